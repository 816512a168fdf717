package engine

import (
	"fmt"
	"strings"

	"workflow-automation/backend/pkg/models"
)

// Validate confirms a task graph is well-formed against the connection
// rule table. It is pure, has no side effects, and runs before any
// capability is invoked so a malformed graph never produces partial
// side effects.
//
// Checks run in order: connection endpoints exist; each edge's type
// pair is allowed; no two edges write the same target config key; the
// graph is acyclic; every required config key is either set or fed by
// an incoming connection.
func Validate(tasks []models.Task, connections []models.Connection) error {
	byID := make(map[string]*models.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}

	for _, conn := range connections {
		if _, ok := byID[conn.Source]; !ok {
			return &UnknownTaskError{TaskID: conn.Source}
		}
		if _, ok := byID[conn.Target]; !ok {
			return &UnknownTaskError{TaskID: conn.Target}
		}
	}

	// incomingKeys records, per target task, which config keys are fed
	// by connections; used both for duplicate-writer rejection and for
	// the required-config check below.
	incomingKeys := make(map[string]map[string]bool)
	for _, conn := range connections {
		source, target := byID[conn.Source], byID[conn.Target]
		if !CanConnect(source.Type, target.Type) {
			return &InvalidConnectionError{SourceType: source.Type, TargetType: target.Type}
		}
		key, _ := OutputKey(source.Type, target.Type)
		if incomingKeys[target.ID] == nil {
			incomingKeys[target.ID] = make(map[string]bool)
		}
		if incomingKeys[target.ID][key] {
			return &DuplicateInputError{TaskID: target.ID, Key: key}
		}
		incomingKeys[target.ID][key] = true
	}

	if err := checkAcyclic(tasks, connections); err != nil {
		return err
	}

	for i := range tasks {
		task := &tasks[i]
		for _, key := range requiredConfigKeys[task.Type] {
			if hasConfigValue(task.Config, key) || incomingKeys[task.ID][key] {
				continue
			}
			return &MissingConfigError{TaskID: task.ID, Key: key}
		}
	}

	return nil
}

// checkAcyclic runs an iterative depth-first search over the connection
// graph, tracking the current path to detect back edges.
func checkAcyclic(tasks []models.Task, connections []models.Connection) error {
	adjacent := make(map[string][]string)
	for _, conn := range connections {
		adjacent[conn.Source] = append(adjacent[conn.Source], conn.Target)
	}

	const (
		unvisited = 0
		inPath    = 1
		done      = 2
	)
	state := make(map[string]int, len(tasks))

	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case inPath:
			return &CyclicGraphError{TaskID: id}
		case done:
			return nil
		}
		state[id] = inPath
		for _, next := range adjacent[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for _, task := range tasks {
		if err := visit(task.ID); err != nil {
			return err
		}
	}
	return nil
}

// hasConfigValue reports whether the config has a non-empty value for
// the key. Empty strings and empty slices do not count: the original
// product treats them the same as absent.
func hasConfigValue(config map[string]any, key string) bool {
	v, ok := config[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	default:
		return fmt.Sprintf("%v", v) != ""
	}
}
