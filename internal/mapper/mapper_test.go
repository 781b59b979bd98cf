package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"project-tracker/internal/entities"
	"project-tracker/internal/transport/http/dto"

	"github.com/stretchr/testify/require"
)

func TestToUserResponseHidesCredential(t *testing.T) {
	res := ToUserResponse(entities.User{ID: "u1", Email: "a@corp.io", PasswordHash: "digest", TeamID: "team1"})
	require.Equal(t, "team1", res.Team)
	require.Equal(t, []string{}, res.Tasks)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "digest")
	require.NotContains(t, string(raw), "password")
}

func TestFromPatchRequests(t *testing.T) {
	status := "Completed"
	patch := FromProjectPatchRequest(dto.ProjectPatchRequest{Status: &status})
	require.NotNil(t, patch.Status)
	require.Equal(t, entities.ProjectCompleted, *patch.Status)
	require.Nil(t, patch.PriorityLevel)
	require.Nil(t, patch.Name)

	taskStatus := "Done"
	tp := FromTaskPatchRequest(dto.TaskPatchRequest{Status: &taskStatus})
	require.Equal(t, entities.TaskDone, *tp.Status)
	require.Nil(t, tp.AssignedTo)
}

func TestFromProjectRequest(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := FromProjectRequest(dto.ProjectRequest{Name: "Apollo", StartDate: &start, Budget: 1000, PriorityLevel: "High"})
	require.Equal(t, start, p.StartDate)
	require.Equal(t, entities.PriorityHigh, p.PriorityLevel)
	require.Empty(t, p.Status)
}
