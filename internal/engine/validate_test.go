package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-automation/backend/pkg/models"
)

func scrapeTask(id string) models.Task {
	return models.Task{
		ID:   id,
		Type: models.TaskTypeScraping,
		Config: map[string]any{
			"url":       "https://example.com",
			"selectors": []string{"h1"},
		},
	}
}

func summarizeTask(id string) models.Task {
	return models.Task{
		ID:     id,
		Type:   models.TaskTypeSummarization,
		Config: map[string]any{"input_text": "some text"},
	}
}

func emailTask(id string) models.Task {
	return models.Task{
		ID:   id,
		Type: models.TaskTypeEmail,
		Config: map[string]any{
			"recipient": "a@example.com",
			"subject":   "hi",
			"body":      "hello",
		},
	}
}

func TestValidateAcceptsWellFormedGraph(t *testing.T) {
	tasks := []models.Task{scrapeTask("t1"), summarizeTask("t2"), emailTask("t3")}
	connections := []models.Connection{
		{Source: "t1", Target: "t2"},
		{Source: "t2", Target: "t3"},
	}

	assert.NoError(t, Validate(tasks, connections))
}

func TestValidateAcceptsDisconnectedTasks(t *testing.T) {
	tasks := []models.Task{scrapeTask("t1"), emailTask("t2")}

	assert.NoError(t, Validate(tasks, nil))
}

func TestValidateRejectsUnknownTaskReference(t *testing.T) {
	tasks := []models.Task{scrapeTask("t1")}
	connections := []models.Connection{{Source: "t1", Target: "ghost"}}

	err := Validate(tasks, connections)
	var unknownErr *UnknownTaskError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "ghost", unknownErr.TaskID)
}

func TestValidateRejectsInvalidTypePair(t *testing.T) {
	// email has no valid targets at all
	tasks := []models.Task{emailTask("t1"), summarizeTask("t2")}
	connections := []models.Connection{{Source: "t1", Target: "t2"}}

	err := Validate(tasks, connections)
	var connErr *InvalidConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, models.TaskTypeEmail, connErr.SourceType)
	assert.Equal(t, models.TaskTypeSummarization, connErr.TargetType)
}

func TestCheckAcyclicRejectsCycle(t *testing.T) {
	// The baseline rule table cannot express an all-type-valid cycle,
	// so the detector is exercised on the raw connection graph.
	tasks := []models.Task{summarizeTask("a"), emailTask("b"), emailTask("c")}

	t.Run("two-node cycle", func(t *testing.T) {
		connections := []models.Connection{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
		}
		var cyclic *CyclicGraphError
		require.ErrorAs(t, checkAcyclic(tasks, connections), &cyclic)
	})

	t.Run("self loop", func(t *testing.T) {
		connections := []models.Connection{{Source: "a", Target: "a"}}
		var cyclic *CyclicGraphError
		require.ErrorAs(t, checkAcyclic(tasks, connections), &cyclic)
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		connections := []models.Connection{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "c"},
			{Source: "b", Target: "c"},
		}
		assert.NoError(t, checkAcyclic(tasks, connections))
	})
}

func TestValidateRejectsDuplicateWritersToSameKey(t *testing.T) {
	// Both scraping and summarization map their output to email.body.
	tasks := []models.Task{scrapeTask("t1"), summarizeTask("t2"), emailTask("t3")}
	connections := []models.Connection{
		{Source: "t1", Target: "t3"},
		{Source: "t2", Target: "t3"},
	}

	err := Validate(tasks, connections)
	var dupErr *DuplicateInputError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "t3", dupErr.TaskID)
	assert.Equal(t, "body", dupErr.Key)
}

func TestValidateRejectsMissingRequiredConfig(t *testing.T) {
	task := models.Task{ID: "t1", Type: models.TaskTypeSummarization, Config: map[string]any{}}

	err := Validate([]models.Task{task}, nil)
	var missingErr *MissingConfigError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "t1", missingErr.TaskID)
	assert.Equal(t, "input_text", missingErr.Key)
}

func TestValidateAcceptsRequiredKeyFedByConnection(t *testing.T) {
	// summarize has no input_text of its own; the scraping edge feeds it.
	tasks := []models.Task{
		scrapeTask("t1"),
		{ID: "t2", Type: models.TaskTypeSummarization, Config: map[string]any{}},
	}
	connections := []models.Connection{{Source: "t1", Target: "t2"}}

	assert.NoError(t, Validate(tasks, connections))
}

func TestValidateTreatsEmptyStringAsMissing(t *testing.T) {
	task := models.Task{
		ID:     "t1",
		Type:   models.TaskTypeSummarization,
		Config: map[string]any{"input_text": "   "},
	}

	err := Validate([]models.Task{task}, nil)
	var missingErr *MissingConfigError
	require.ErrorAs(t, err, &missingErr)
}

func TestValidateIsIdempotent(t *testing.T) {
	tasks := []models.Task{scrapeTask("t1"), summarizeTask("t2")}
	connections := []models.Connection{{Source: "t1", Target: "t2"}}

	first := Validate(tasks, connections)
	second := Validate(tasks, connections)
	assert.NoError(t, first)
	assert.NoError(t, second)

	bad := []models.Connection{{Source: "t2", Target: "t1"}}
	firstErr := Validate(tasks, bad)
	secondErr := Validate(tasks, bad)
	assert.Equal(t, firstErr, secondErr)
}
