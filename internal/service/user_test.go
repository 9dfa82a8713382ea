package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taitfuller/feedr-backend/internal/domain"
	apperrors "github.com/taitfuller/feedr-backend/pkg/errors"
	"github.com/taitfuller/feedr-backend/pkg/validator"
)

var testIssueInput = &CreateIssueInput{Owner: "acme", Repo: "app", Title: "Crash", Body: "Seen in reviews"}

func TestGetUser(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, new(mockIssueCreator), newTestLogger())
	ctx := context.Background()

	users.On("GetByID", ctx, testUserID).Return(&domain.User{ID: testUserID, Feeds: []string{testFeedID}}, nil)

	u, err := svc.GetUser(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, []string{testFeedID}, u.Feeds)
}

func TestGetUser_NotFound(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, new(mockIssueCreator), newTestLogger())
	ctx := context.Background()

	users.On("GetByID", ctx, testUserID).Return(nil, apperrors.NotFound("user", testUserID))

	_, err := svc.GetUser(ctx, testUserID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateIssue(t *testing.T) {
	users := new(mockUserRepository)
	issues := new(mockIssueCreator)
	svc := NewUserService(users, issues, newTestLogger())
	ctx := context.Background()

	users.On("GetAccessToken", ctx, testUserID).Return("gho_abc", nil)
	issues.On("CreateIssue", ctx, "gho_abc", domain.Issue{Owner: "acme", Repo: "app", Title: "Crash", Body: "Seen in reviews"}).
		Return(http.StatusCreated, nil)

	status, err := svc.CreateIssue(ctx, testUserID, testIssueInput)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	issues.AssertExpectations(t)
}

func TestCreateIssue_UpstreamStatusPassesThrough(t *testing.T) {
	users := new(mockUserRepository)
	issues := new(mockIssueCreator)
	svc := NewUserService(users, issues, newTestLogger())
	ctx := context.Background()

	users.On("GetAccessToken", ctx, testUserID).Return("gho_abc", nil)
	issues.On("CreateIssue", ctx, "gho_abc", mock.Anything).Return(http.StatusNotFound, nil)

	status, err := svc.CreateIssue(ctx, testUserID, testIssueInput)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateIssue_NoToken(t *testing.T) {
	users := new(mockUserRepository)
	issues := new(mockIssueCreator)
	svc := NewUserService(users, issues, newTestLogger())
	ctx := context.Background()

	users.On("GetAccessToken", ctx, testUserID).Return("", nil)

	_, err := svc.CreateIssue(ctx, testUserID, testIssueInput)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	issues.AssertNotCalled(t, "CreateIssue", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateIssue_MissingField(t *testing.T) {
	svc := NewUserService(new(mockUserRepository), new(mockIssueCreator), newTestLogger())

	_, err := svc.CreateIssue(context.Background(), testUserID, &CreateIssueInput{Owner: "acme", Repo: "app", Title: "Crash"})
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "body")
}

func TestCreateIssue_Unavailable(t *testing.T) {
	users := new(mockUserRepository)
	issues := new(mockIssueCreator)
	svc := NewUserService(users, issues, newTestLogger())
	ctx := context.Background()

	users.On("GetAccessToken", ctx, testUserID).Return("gho_abc", nil)
	issues.On("CreateIssue", ctx, "gho_abc", mock.Anything).
		Return(0, apperrors.ServiceUnavailable("github is unavailable", errors.New("circuit breaker is open")))

	_, err := svc.CreateIssue(ctx, testUserID, testIssueInput)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}
