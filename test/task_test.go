package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestCreateTask(t *testing.T) {
	app := CreateTestApp()

	token, userID, _ := Signup(t, app, "TaskOwner")

	resp := DoJSON(t, app, "POST", "/tasks", token, map[string]string{
		"description": "buy milk",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}
	task := decodeBody(t, resp)
	if task["description"] != "buy milk" {
		t.Errorf("Expected description 'buy milk', got %v", task["description"])
	}
	if task["completed"] != false {
		t.Errorf("Expected completed to default to false, got %v", task["completed"])
	}
	if task["owner"] != float64(userID) {
		t.Errorf("Expected owner %d, got %v", userID, task["owner"])
	}
}

func TestCreateTaskValidation(t *testing.T) {
	app := CreateTestApp()

	token, _, _ := Signup(t, app, "TaskValid")

	resp := DoJSON(t, app, "POST", "/tasks", token, map[string]string{"description": "   "})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for blank description, got %d", resp.StatusCode)
	}
}

func TestGetTaskScopedToOwner(t *testing.T) {
	app := CreateTestApp()

	ownerToken, _, _ := Signup(t, app, "Owner")
	otherToken, _, _ := Signup(t, app, "Other")
	taskID := CreateTask(t, app, ownerToken, "private task")

	resp := DoJSON(t, app, "GET", fmt.Sprintf("/tasks/%d", taskID), ownerToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 for owner, got %d", resp.StatusCode)
	}

	// Someone else's task is indistinguishable from a missing one
	resp = DoJSON(t, app, "GET", fmt.Sprintf("/tasks/%d", taskID), otherToken, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 for non-owner, got %d", resp.StatusCode)
	}
}

func TestGetMissingTask(t *testing.T) {
	app := CreateTestApp()

	token, _, _ := Signup(t, app, "NoTask")
	resp := DoJSON(t, app, "GET", "/tasks/999999", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 for missing task, got %d", resp.StatusCode)
	}
}

func TestListTasksCompletedFilter(t *testing.T) {
	app := CreateTestApp()

	token, _, _ := Signup(t, app, "Filter")
	CreateTask(t, app, token, "open one")
	CreateTask(t, app, token, "open two")
	doneID := CreateTask(t, app, token, "done one")

	resp := DoJSON(t, app, "PATCH", fmt.Sprintf("/tasks/%d", doneID), token, map[string]bool{"completed": true})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 completing task, got %d", resp.StatusCode)
	}

	resp = DoJSON(t, app, "GET", "/tasks?completed=true", token, nil)
	var completed []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&completed); err != nil {
		t.Fatalf("Error decoding list: %v", err)
	}
	resp.Body.Close()
	if len(completed) != 1 {
		t.Fatalf("Expected exactly 1 completed task, got %d", len(completed))
	}
	for _, task := range completed {
		if task["completed"] != true {
			t.Errorf("Filtered list contains an open task: %v", task)
		}
	}
	if completed[0]["id"] != float64(doneID) {
		t.Errorf("Expected completed task %d, got %v", doneID, completed[0]["id"])
	}

	resp = DoJSON(t, app, "GET", "/tasks?completed=false", token, nil)
	var open []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&open); err != nil {
		t.Fatalf("Error decoding list: %v", err)
	}
	resp.Body.Close()
	if len(open) != 2 {
		t.Errorf("Expected 2 open tasks, got %d", len(open))
	}
	for _, task := range open {
		if task["id"] == float64(doneID) {
			t.Errorf("Completed task leaked into the open list")
		}
	}
}

func TestListTasksSortAndPaginate(t *testing.T) {
	app := CreateTestApp()

	token, _, _ := Signup(t, app, "Sorter")
	CreateTask(t, app, token, "alpha")
	CreateTask(t, app, token, "charlie")
	CreateTask(t, app, token, "bravo")

	resp := DoJSON(t, app, "GET", "/tasks?sortBy=description:desc", token, nil)
	var tasks []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		t.Fatalf("Error decoding list: %v", err)
	}
	resp.Body.Close()
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0]["description"] != "charlie" || tasks[2]["description"] != "alpha" {
		t.Errorf("Unexpected sort order: %v, %v, %v",
			tasks[0]["description"], tasks[1]["description"], tasks[2]["description"])
	}

	// Second page of size one, ascending
	resp = DoJSON(t, app, "GET", "/tasks?sortBy=description:asc&limit=1&skip=1", token, nil)
	var page []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("Error decoding list: %v", err)
	}
	resp.Body.Close()
	if len(page) != 1 || page[0]["description"] != "bravo" {
		t.Errorf("Expected page [bravo], got %v", page)
	}
}

func TestListTasksInvalidPagination(t *testing.T) {
	app := CreateTestApp()

	token, _, _ := Signup(t, app, "BadPage")

	for _, query := range []string{"limit=abc", "skip=abc", "limit=-1", "skip=-2"} {
		resp := DoJSON(t, app, "GET", "/tasks?"+query, token, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", query, resp.StatusCode)
		}
	}
}

func TestUpdateTask(t *testing.T) {
	app := CreateTestApp()

	token, _, _ := Signup(t, app, "Updater")
	taskID := CreateTask(t, app, token, "to finish")

	resp := DoJSON(t, app, "PATCH", fmt.Sprintf("/tasks/%d", taskID), token, map[string]interface{}{
		"description": "finished",
		"completed":   true,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	task := decodeBody(t, resp)
	if task["description"] != "finished" || task["completed"] != true {
		t.Errorf("Update not applied: %v", task)
	}
}

func TestUpdateTaskRejectsUnknownField(t *testing.T) {
	app := CreateTestApp()

	token, _, _ := Signup(t, app, "StrictTask")
	taskID := CreateTask(t, app, token, "untouchable")

	resp := DoJSON(t, app, "PATCH", fmt.Sprintf("/tasks/%d", taskID), token, map[string]interface{}{
		"description": "changed",
		"owner":       1,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected status 400 for unknown field, got %d", resp.StatusCode)
	}
	result := decodeBody(t, resp)
	if result["error"] != "Invalid updates" {
		t.Errorf("Expected 'Invalid updates' error, got %v", result["error"])
	}

	// The rejected update must not have mutated the task
	check := DoJSON(t, app, "GET", fmt.Sprintf("/tasks/%d", taskID), token, nil)
	defer check.Body.Close()
	task := decodeBody(t, check)
	if task["description"] != "untouchable" {
		t.Errorf("Rejected update mutated the task: %v", task["description"])
	}
}

func TestUpdateMissingTask(t *testing.T) {
	app := CreateTestApp()

	token, _, _ := Signup(t, app, "UpdateMissing")
	resp := DoJSON(t, app, "PATCH", "/tasks/999999", token, map[string]bool{"completed": true})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestDeleteTask(t *testing.T) {
	app := CreateTestApp()

	token, _, _ := Signup(t, app, "Deleter")
	taskID := CreateTask(t, app, token, "short lived")

	resp := DoJSON(t, app, "DELETE", fmt.Sprintf("/tasks/%d", taskID), token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	task := decodeBody(t, resp)
	if task["description"] != "short lived" {
		t.Errorf("Expected deleted task in response, got %v", task)
	}

	// Deleting again answers 404
	resp = DoJSON(t, app, "DELETE", fmt.Sprintf("/tasks/%d", taskID), token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 for second delete, got %d", resp.StatusCode)
	}
}
