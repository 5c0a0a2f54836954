package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) AddTask(ctx context.Context, ownerID, text string) (int64, error) {
	args := m.Called(ctx, ownerID, text)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) GetTasks(ctx context.Context, userID string) (model.TaskList, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.TaskList), args.Error(1)
}

func (m *MockTaskRepository) ShareTask(ctx context.Context, taskID int64, actingUserID, targetUserID string) (bool, error) {
	args := m.Called(ctx, taskID, actingUserID, targetUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) CompleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error) {
	args := m.Called(ctx, taskID, actingUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) DeleteTask(ctx context.Context, taskID int64, actingUserID string) (bool, error) {
	args := m.Called(ctx, taskID, actingUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) Close() error {
	return m.Called().Error(0)
}

func TestTaskService_AddTask(t *testing.T) {
	tests := []struct {
		name      string
		owner     string
		text      string
		setupMock func(*MockTaskRepository)
		wantID    int64
		wantErr   error
	}{
		{
			name:  "successful creation",
			owner: "alice",
			text:  "Buy milk",
			setupMock: func(m *MockTaskRepository) {
				m.On("AddTask", mock.Anything, "alice", "Buy milk").Return(int64(1), nil)
			},
			wantID: 1,
		},
		{
			name:  "text is trimmed",
			owner: "alice",
			text:  "  Buy milk \n",
			setupMock: func(m *MockTaskRepository) {
				m.On("AddTask", mock.Anything, "alice", "Buy milk").Return(int64(2), nil)
			},
			wantID: 2,
		},
		{
			name:      "validation error - empty text",
			owner:     "alice",
			text:      "   ",
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "validation error - empty owner",
			owner:     "",
			text:      "Buy milk",
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			service := NewTaskService(mockRepo)
			id, err := service.AddTask(context.Background(), tt.owner, tt.text)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_GetTasks(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	expected := model.TaskList{
		Own:    []model.TaskView{{ID: 1, Text: "Buy milk", OwnerID: "alice", SharedWith: []string{"bob"}}},
		Shared: []model.TaskView{},
	}
	mockRepo.On("GetTasks", mock.Anything, "alice").Return(expected, nil)

	service := NewTaskService(mockRepo)
	list, err := service.GetTasks(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, expected, list)

	_, err = service.GetTasks(context.Background(), " ")
	assert.ErrorIs(t, err, ErrValidation)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_ShareTask(t *testing.T) {
	tests := []struct {
		name      string
		taskID    int64
		acting    string
		target    string
		setupMock func(*MockTaskRepository)
		want      bool
		wantErr   error
	}{
		{
			name:   "owner shares",
			taskID: 1, acting: "alice", target: "bob",
			setupMock: func(m *MockTaskRepository) {
				m.On("ShareTask", mock.Anything, int64(1), "alice", "bob").Return(true, nil)
			},
			want: true,
		},
		{
			name:   "store refuses",
			taskID: 1, acting: "bob", target: "carol",
			setupMock: func(m *MockTaskRepository) {
				m.On("ShareTask", mock.Anything, int64(1), "bob", "carol").Return(false, nil)
			},
			want: false,
		},
		{
			name:   "empty target",
			taskID: 1, acting: "alice", target: "",
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:   "bad task id",
			taskID: 0, acting: "alice", target: "bob",
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			service := NewTaskService(mockRepo)
			ok, err := service.ShareTask(context.Background(), tt.taskID, tt.acting, tt.target)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, ok)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_CompleteAndDelete(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("CompleteTask", mock.Anything, int64(7), "bob").Return(true, nil)
	mockRepo.On("DeleteTask", mock.Anything, int64(7), "bob").Return(false, nil)

	service := NewTaskService(mockRepo)

	ok, err := service.CompleteTask(context.Background(), 7, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.DeleteTask(context.Background(), 7, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = service.CompleteTask(context.Background(), -1, "bob")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = service.DeleteTask(context.Background(), 7, "")
	assert.ErrorIs(t, err, ErrValidation)

	mockRepo.AssertExpectations(t)
}

func TestTaskService_StorageErrorPropagates(t *testing.T) {
	storageErr := errors.New("connection reset")
	mockRepo := new(MockTaskRepository)
	mockRepo.On("DeleteTask", mock.Anything, int64(3), "alice").Return(false, storageErr)

	service := NewTaskService(mockRepo)
	ok, err := service.DeleteTask(context.Background(), 3, "alice")

	assert.False(t, ok)
	assert.ErrorIs(t, err, storageErr)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_Validate(t *testing.T) {
	service := &TaskService{}

	tests := []struct {
		name    string
		taskID  int64
		user    string
		wantErr bool
	}{
		{name: "valid", taskID: 1, user: "alice", wantErr: false},
		{name: "zero id", taskID: 0, user: "alice", wantErr: true},
		{name: "negative id", taskID: -5, user: "alice", wantErr: true},
		{name: "empty user", taskID: 1, user: "", wantErr: true},
		{name: "whitespace user", taskID: 1, user: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.validateTarget(tt.taskID, tt.user)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
