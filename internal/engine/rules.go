// Package engine contains the workflow execution core: the connection
// rule table, the task graph validator, and the execution engine that
// runs a workflow's tasks in dependency order.
package engine

import (
	"workflow-automation/backend/pkg/models"
)

// ConnectionRule declares, for one source task type, which downstream
// task types may be connected and which config key of each target
// receives the source's output.
type ConnectionRule struct {
	ValidTargets  []models.TaskType
	OutputMapping map[models.TaskType]string
}

// validConnections is the static connection policy. Supporting a new
// task type only requires a new entry here and a registered provider;
// the engine itself does not change.
var validConnections = map[models.TaskType]ConnectionRule{
	models.TaskTypeScraping: {
		ValidTargets: []models.TaskType{models.TaskTypeSummarization, models.TaskTypeEmail},
		OutputMapping: map[models.TaskType]string{
			models.TaskTypeSummarization: "input_text",
			models.TaskTypeEmail:         "body",
		},
	},
	models.TaskTypeClassification: {
		ValidTargets: []models.TaskType{models.TaskTypeEmail},
		OutputMapping: map[models.TaskType]string{
			models.TaskTypeEmail: "body",
		},
	},
	models.TaskTypeSummarization: {
		ValidTargets: []models.TaskType{models.TaskTypeEmail},
		OutputMapping: map[models.TaskType]string{
			models.TaskTypeEmail: "body",
		},
	},
	models.TaskTypeEmail: {
		ValidTargets:  []models.TaskType{},
		OutputMapping: map[models.TaskType]string{},
	},
}

// requiredConfigKeys lists the config keys each task type needs before
// it can execute. A key may instead be satisfied by an incoming
// connection whose output mapping writes it.
var requiredConfigKeys = map[models.TaskType][]string{
	models.TaskTypeScraping:       {"url", "selectors"},
	models.TaskTypeSummarization:  {"input_text"},
	models.TaskTypeClassification: {"image_url"},
	models.TaskTypeEmail:          {"recipient", "subject", "body"},
}

// RuleFor returns the connection rule for a task type. The second
// return value is false for types absent from the table.
func RuleFor(t models.TaskType) (ConnectionRule, bool) {
	r, ok := validConnections[t]
	return r, ok
}

// CanConnect reports whether an edge from source type to target type is
// allowed by the rule table.
func CanConnect(source, target models.TaskType) bool {
	rule, ok := validConnections[source]
	if !ok {
		return false
	}
	for _, t := range rule.ValidTargets {
		if t == target {
			return true
		}
	}
	return false
}

// OutputKey returns the target config key that receives the source
// type's output, or false when the pair is not connectable.
func OutputKey(source, target models.TaskType) (string, bool) {
	rule, ok := validConnections[source]
	if !ok {
		return "", false
	}
	key, ok := rule.OutputMapping[target]
	return key, ok
}
