package test

import (
	"fmt"
	"testing"

	"task-manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskDefaults(t *testing.T) {
	app := CreateTestApp()

	sess := registerUser(t, app, "taskuser")
	category := createCategory(t, app, sess.Token, "Inbox")

	task := createTask(t, app, sess.Token, "Write spec", "draft", category.ID)
	assert.Equal(t, sess.UserID, task.UserID)
	assert.Equal(t, category.ID, task.CategoryID)
	assert.False(t, task.Completed)
	assert.False(t, task.Deleted)
	require.NotNil(t, task.Category)
	assert.Equal(t, category.Name, task.Category.Name)
}

func TestCreateTaskUnownedCategory(t *testing.T) {
	app := CreateTestApp()

	owner := registerUser(t, app, "owner")
	category := createCategory(t, app, owner.Token, "Private")

	intruder := registerUser(t, app, "intruder")
	resp := doJSON(t, app, "POST", "/tasks", map[string]interface{}{
		"title":       "Sneaky",
		"description": "should fail",
		"categoryId":  category.ID,
	}, intruder.Token)
	assert.Equal(t, 400, resp.StatusCode)
	unownedMsg := errorMessage(t, resp)

	// A nonexistent category reads identically, so the response leaks
	// nothing about whether the category exists.
	missingResp := doJSON(t, app, "POST", "/tasks", map[string]interface{}{
		"title":       "Sneaky",
		"description": "should fail",
		"categoryId":  999999999,
	}, intruder.Token)
	assert.Equal(t, 400, missingResp.StatusCode)
	assert.Equal(t, unownedMsg, errorMessage(t, missingResp))
}

func TestCreateTaskRequiresAuth(t *testing.T) {
	app := CreateTestApp()

	resp := doJSON(t, app, "POST", "/tasks", map[string]interface{}{
		"title":       "NoAuth",
		"description": "no token",
		"categoryId":  1,
	}, "")
	assert.Equal(t, 401, resp.StatusCode)
}

func TestGetUnknownTask(t *testing.T) {
	app := CreateTestApp()

	resp := doJSON(t, app, "GET", "/tasks/999999999", nil, "")
	assert.Equal(t, 404, resp.StatusCode)
	resp.Body.Close()
}

func TestListTasksFiltersByCategory(t *testing.T) {
	app := CreateTestApp()

	sess := registerUser(t, app, "listuser")
	work := createCategory(t, app, sess.Token, "Work")
	home := createCategory(t, app, sess.Token, "Home")

	workTask := createTask(t, app, sess.Token, "Report", "quarterly", work.ID)
	createTask(t, app, sess.Token, "Dishes", "tonight", home.ID)

	resp := doJSON(t, app, "GET", fmt.Sprintf("/tasks?categoryId=%d", work.ID), nil, "")
	require.Equal(t, 200, resp.StatusCode)

	var tasks []models.Task
	decodeBody(t, resp, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, workTask.ID, tasks[0].ID)
	require.NotNil(t, tasks[0].Category)
	assert.Equal(t, work.Name, tasks[0].Category.Name)
}

// TestSoftDeleteLifecycle walks the full cycle: create, soft-delete,
// disappear from listings, restore, and reject a second restore.
func TestSoftDeleteLifecycle(t *testing.T) {
	app := CreateTestApp()

	sess := registerUser(t, app, "alice")
	category := createCategory(t, app, sess.Token, "Work")
	task := createTask(t, app, sess.Token, "Write spec", "draft", category.ID)

	// Soft delete.
	delResp := doJSON(t, app, "DELETE", fmt.Sprintf("/tasks/%d", task.ID), nil, "")
	require.Equal(t, 200, delResp.StatusCode)
	var delBody struct {
		Message string `json:"message"`
	}
	decodeBody(t, delResp, &delBody)
	assert.Equal(t, "Task marked as deleted", delBody.Message)

	// Gone from the default listing.
	listResp := doJSON(t, app, "GET", fmt.Sprintf("/tasks?categoryId=%d", category.ID), nil, "")
	require.Equal(t, 200, listResp.StatusCode)
	var tasks []models.Task
	decodeBody(t, listResp, &tasks)
	assert.Empty(t, tasks)

	// Indistinguishable from nonexistent by ID.
	getResp := doJSON(t, app, "GET", fmt.Sprintf("/tasks/%d", task.ID), nil, "")
	assert.Equal(t, 404, getResp.StatusCode)
	getResp.Body.Close()

	// Restore brings it back.
	restoreResp := doJSON(t, app, "POST", fmt.Sprintf("/tasks/restore/%d", task.ID), nil, "")
	require.Equal(t, 200, restoreResp.StatusCode)
	var restored models.Task
	decodeBody(t, restoreResp, &restored)
	assert.Equal(t, task.ID, restored.ID)
	assert.False(t, restored.Deleted)

	listResp = doJSON(t, app, "GET", fmt.Sprintf("/tasks?categoryId=%d", category.ID), nil, "")
	require.Equal(t, 200, listResp.StatusCode)
	decodeBody(t, listResp, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)

	// Restoring an active task is a 404, not a no-op.
	secondRestore := doJSON(t, app, "POST", fmt.Sprintf("/tasks/restore/%d", task.ID), nil, "")
	assert.Equal(t, 404, secondRestore.StatusCode)
	assert.Equal(t, "Task not found or already active", errorMessage(t, secondRestore))
}

func TestSoftDeleteIdempotent(t *testing.T) {
	app := CreateTestApp()

	sess := registerUser(t, app, "deltwice")
	category := createCategory(t, app, sess.Token, "Chores")
	task := createTask(t, app, sess.Token, "Sweep", "kitchen", category.ID)

	for i := 0; i < 2; i++ {
		resp := doJSON(t, app, "DELETE", fmt.Sprintf("/tasks/%d", task.ID), nil, "")
		assert.Equal(t, 200, resp.StatusCode, "delete attempt %d", i+1)
		resp.Body.Close()
	}
}

func TestDeleteUnknownTask(t *testing.T) {
	app := CreateTestApp()

	resp := doJSON(t, app, "DELETE", "/tasks/999999999", nil, "")
	assert.Equal(t, 404, resp.StatusCode)
	resp.Body.Close()
}

func TestRestoreUnknownTask(t *testing.T) {
	app := CreateTestApp()

	resp := doJSON(t, app, "POST", "/tasks/restore/999999999", nil, "")
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "Task not found or already active", errorMessage(t, resp))
}

func TestUpdatePartialFields(t *testing.T) {
	app := CreateTestApp()

	sess := registerUser(t, app, "upduser")
	category := createCategory(t, app, sess.Token, "Notes")
	task := createTask(t, app, sess.Token, "Original title", "original description", category.ID)

	// Updating one field leaves the others alone.
	resp := doJSON(t, app, "PUT", fmt.Sprintf("/tasks/%d", task.ID), map[string]interface{}{
		"description": "revised description",
	}, "")
	require.Equal(t, 200, resp.StatusCode)
	var updated models.Task
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Original title", updated.Title)
	assert.Equal(t, "revised description", updated.Description)
	assert.False(t, updated.Completed)

	// An empty title is treated as absent.
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/tasks/%d", task.ID), map[string]interface{}{
		"title": "",
	}, "")
	require.Equal(t, 200, resp.StatusCode)
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Original title", updated.Title)

	// completed=true applies...
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/tasks/%d", task.ID), map[string]interface{}{
		"completed": true,
	}, "")
	require.Equal(t, 200, resp.StatusCode)
	decodeBody(t, resp, &updated)
	assert.True(t, updated.Completed)

	// ...and an explicit false applies too, unlike the empty string above.
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/tasks/%d", task.ID), map[string]interface{}{
		"completed": false,
	}, "")
	require.Equal(t, 200, resp.StatusCode)
	decodeBody(t, resp, &updated)
	assert.False(t, updated.Completed)

	// Omitting completed leaves it untouched.
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/tasks/%d", task.ID), map[string]interface{}{
		"completed": true,
	}, "")
	require.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, "PUT", fmt.Sprintf("/tasks/%d", task.ID), map[string]interface{}{
		"title": "Renamed",
	}, "")
	require.Equal(t, 200, resp.StatusCode)
	decodeBody(t, resp, &updated)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdateCategoryExistenceOnly(t *testing.T) {
	app := CreateTestApp()

	sess := registerUser(t, app, "updcat")
	category := createCategory(t, app, sess.Token, "Mine")
	task := createTask(t, app, sess.Token, "Movable", "task", category.ID)

	// A nonexistent category is rejected.
	resp := doJSON(t, app, "PUT", fmt.Sprintf("/tasks/%d", task.ID), map[string]interface{}{
		"categoryId": 999999999,
	}, "")
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Invalid category ID", errorMessage(t, resp))

	// Any existing category is accepted, even one owned by another user:
	// update checks existence only, ownership was enforced at creation.
	other := registerUser(t, app, "updcatother")
	foreign := createCategory(t, app, other.Token, "Theirs")

	resp = doJSON(t, app, "PUT", fmt.Sprintf("/tasks/%d", task.ID), map[string]interface{}{
		"categoryId": foreign.ID,
	}, "")
	require.Equal(t, 200, resp.StatusCode)
	var updated models.Task
	decodeBody(t, resp, &updated)
	assert.Equal(t, foreign.ID, updated.CategoryID)
}

func TestUpdateWorksOnDeletedTask(t *testing.T) {
	app := CreateTestApp()

	sess := registerUser(t, app, "upddel")
	category := createCategory(t, app, sess.Token, "Archive")
	task := createTask(t, app, sess.Token, "Buried", "still editable", category.ID)

	delResp := doJSON(t, app, "DELETE", fmt.Sprintf("/tasks/%d", task.ID), nil, "")
	require.Equal(t, 200, delResp.StatusCode)
	delResp.Body.Close()

	// Update does not filter on the deleted flag, unlike get.
	resp := doJSON(t, app, "PUT", fmt.Sprintf("/tasks/%d", task.ID), map[string]interface{}{
		"title": "Edited while deleted",
	}, "")
	require.Equal(t, 200, resp.StatusCode)
	var updated models.Task
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Edited while deleted", updated.Title)
	assert.True(t, updated.Deleted)

	getResp := doJSON(t, app, "GET", fmt.Sprintf("/tasks/%d", task.ID), nil, "")
	assert.Equal(t, 404, getResp.StatusCode)
	getResp.Body.Close()
}

func TestUpdateUnknownTask(t *testing.T) {
	app := CreateTestApp()

	resp := doJSON(t, app, "PUT", "/tasks/999999999", map[string]interface{}{
		"title": "Nope",
	}, "")
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "Task not found", errorMessage(t, resp))
}
