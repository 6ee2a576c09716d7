package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

// Walks the whole happy path: signup, profile read, task creation,
// completion and filtered listing with a single session token.
func TestEndToEndFlow(t *testing.T) {
	app := CreateTestApp()

	token, userID, email := Signup(t, app, "A")

	resp := DoJSON(t, app, "GET", "/users/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 for profile, got %d", resp.StatusCode)
	}
	user := decodeBody(t, resp)
	resp.Body.Close()
	if user["name"] != "A" || user["email"] != email || user["age"] != float64(0) {
		t.Fatalf("Unexpected profile: %v", user)
	}

	taskID := CreateTask(t, app, token, "buy milk")

	resp = DoJSON(t, app, "GET", "/tasks?completed=false", token, nil)
	var open []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&open); err != nil {
		t.Fatalf("Error decoding list: %v", err)
	}
	resp.Body.Close()
	found := false
	for _, task := range open {
		if task["id"] == float64(taskID) {
			found = true
			if task["owner"] != float64(userID) {
				t.Errorf("Task owned by %v, expected %d", task["owner"], userID)
			}
		}
	}
	if !found {
		t.Fatalf("New task missing from ?completed=false list")
	}

	resp = DoJSON(t, app, "PATCH", fmt.Sprintf("/tasks/%d", taskID), token, map[string]bool{"completed": true})
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
	found = false
	for _, task := range completed {
		if task["id"] == float64(taskID) {
			found = true
		}
	}
	if !found {
		t.Errorf("Completed task missing from ?completed=true list")
	}

	resp = DoJSON(t, app, "GET", "/tasks?completed=false", token, nil)
	var stillOpen []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&stillOpen); err != nil {
		t.Fatalf("Error decoding list: %v", err)
	}
	resp.Body.Close()
	for _, task := range stillOpen {
		if task["id"] == float64(taskID) {
			t.Errorf("Completed task still listed as open")
		}
	}
}
