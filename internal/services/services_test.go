package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-tracker/internal/auth"
	"github.com/yukikurage/task-tracker/internal/database"
	"github.com/yukikurage/task-tracker/internal/models"
	"github.com/yukikurage/task-tracker/internal/optional"
	"github.com/yukikurage/task-tracker/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type stubGenerator struct {
	tasks []GeneratedTask
	err   error
}

func (g *stubGenerator) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	return g.tasks, g.err
}

type ServicesTestSuite struct {
	suite.Suite
	db         *gorm.DB
	store      repository.Store
	tokens     *auth.TokenManager
	auth       *AuthService
	categories *CategoryService
	tasks      *TaskService
	ctx        context.Context
}

func (suite *ServicesTestSuite) SetupTest() {
	var err error
	suite.db, err = database.OpenSQLite(":memory:")
	suite.Require().NoError(err)
	suite.Require().NoError(database.MigrateDatabase(suite.db))

	suite.store = repository.NewStore(suite.db)
	tokens, err := auth.NewTokenManager("test-secret", "task-tracker", 30*time.Minute)
	suite.Require().NoError(err)
	suite.tokens = tokens.WithClock(func() time.Time { return fixedNow })

	suite.auth = NewAuthService(suite.store, auth.NewPasswordHasher(bcrypt.MinCost), suite.tokens).
		WithAdminEmails("admin@example.com")
	suite.categories = NewCategoryService(suite.store)
	suite.tasks = NewTaskService(suite.store, suite.categories, nil).
		WithClock(func() time.Time { return fixedNow })
	suite.ctx = context.Background()
}

func (suite *ServicesTestSuite) TearDownTest() {
	suite.Require().NoError(database.Close(suite.db))
}

func (suite *ServicesTestSuite) register(name, email string) *models.User {
	user, err := suite.auth.Register(suite.ctx, RegisterInput{Name: name, Email: email, Password: "secret"})
	suite.Require().NoError(err)
	return user
}

func (suite *ServicesTestSuite) createTask(ownerID uint64, title string) *models.Task {
	task, err := suite.tasks.Create(suite.ctx, ownerID, TaskDraft{Title: title})
	suite.Require().NoError(err)
	return task
}

func (suite *ServicesTestSuite) createCategory(title string) *models.Category {
	category, err := suite.categories.Create(suite.ctx, title)
	suite.Require().NoError(err)
	return category
}

// Auth

func (suite *ServicesTestSuite) TestRegister_Validation() {
	cases := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"short name", RegisterInput{Name: " A ", Email: "a@b.io", Password: "secret"}, ErrInvalidName},
		{"bad email", RegisterInput{Name: "Ann", Email: "ann.example.com", Password: "secret"}, ErrInvalidEmail},
		{"short password", RegisterInput{Name: "Ann", Email: "a@b.io", Password: "abc"}, ErrInvalidPassword},
		{"long password", RegisterInput{Name: "Ann", Email: "a@b.io", Password: string(make([]byte, 73))}, ErrInvalidPassword},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.auth.Register(suite.ctx, tc.input)
			suite.ErrorIs(err, tc.want)
			suite.ErrorIs(err, ErrValidation)
		})
	}
}

func (suite *ServicesTestSuite) TestRegister_DuplicateEmail() {
	suite.register("Ann", "ann@example.com")

	_, err := suite.auth.Register(suite.ctx, RegisterInput{Name: "Other", Email: " ANN@example.com ", Password: "secret"})
	suite.ErrorIs(err, ErrEmailTaken)
	suite.ErrorIs(err, ErrConflict)
}

func (suite *ServicesTestSuite) TestRegister_AdminEmail() {
	admin := suite.register("Root", "admin@example.com")
	user := suite.register("Ann", "ann@example.com")

	suite.True(admin.IsAdmin)
	suite.False(user.IsAdmin)
}

func (suite *ServicesTestSuite) TestLogin() {
	user := suite.register("Ann", "ann@example.com")

	token, loggedIn, err := suite.auth.Login(suite.ctx, "ann@example.com", "secret")
	suite.Require().NoError(err)
	suite.Equal(user.ID, loggedIn.ID)
	suite.NotEmpty(token)

	_, _, err = suite.auth.Login(suite.ctx, "ann@example.com", "wrong")
	suite.ErrorIs(err, ErrInvalidCredentials)

	_, _, err = suite.auth.Login(suite.ctx, "nobody@example.com", "secret")
	suite.ErrorIs(err, ErrInvalidCredentials)
	suite.ErrorIs(err, ErrUnauthenticated)
}

func (suite *ServicesTestSuite) TestResolveIdentity_BothTransports() {
	user := suite.register("Ann", "ann@example.com")
	token, err := suite.auth.IssueToken(user.ID, 0)
	suite.Require().NoError(err)

	headerReq := httptest.NewRequest(http.MethodGet, "/", nil)
	headerReq.Header.Set("Authorization", "Bearer "+token)
	fromHeader, err := suite.auth.ResolveIdentity(suite.ctx, headerReq, auth.FromHeader)
	suite.Require().NoError(err)
	suite.Equal(user.ID, fromHeader.ID)

	cookieReq := httptest.NewRequest(http.MethodGet, "/", nil)
	cookieReq.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	fromCookie, err := suite.auth.ResolveIdentity(suite.ctx, cookieReq, auth.FromCookie("access_token"))
	suite.Require().NoError(err)
	suite.Equal(user.ID, fromCookie.ID)

	_, err = suite.auth.ResolveIdentity(suite.ctx, httptest.NewRequest(http.MethodGet, "/", nil), auth.FromHeader)
	suite.ErrorIs(err, ErrMissingToken)
}

func (suite *ServicesTestSuite) TestResolveIdentity_Rejects() {
	user := suite.register("Ann", "ann@example.com")

	suite.Run("expired", func() {
		token, err := suite.tokens.Issue(user.ID, time.Minute)
		suite.Require().NoError(err)

		later := suite.tokens.WithClock(func() time.Time { return fixedNow.Add(2 * time.Minute) })
		svc := NewAuthService(suite.store, auth.NewPasswordHasher(bcrypt.MinCost), later)

		_, err = svc.Identify(suite.ctx, token)
		suite.ErrorIs(err, ErrTokenExpired)
		suite.ErrorIs(err, ErrUnauthenticated)
	})

	suite.Run("bad signature", func() {
		other, err := auth.NewTokenManager("other-secret", "task-tracker", time.Minute)
		suite.Require().NoError(err)
		token, err := other.WithClock(func() time.Time { return fixedNow }).Issue(user.ID, 0)
		suite.Require().NoError(err)

		_, err = suite.auth.Identify(suite.ctx, token)
		suite.ErrorIs(err, ErrInvalidToken)
	})

	suite.Run("deleted user", func() {
		token, err := suite.auth.IssueToken(user.ID, 0)
		suite.Require().NoError(err)
		suite.Require().NoError(suite.auth.DeleteAccount(suite.ctx, user.ID))

		_, err = suite.auth.Identify(suite.ctx, token)
		suite.ErrorIs(err, ErrInvalidToken)
	})
}

func (suite *ServicesTestSuite) TestRequireAdmin() {
	admin := suite.register("Root", "admin@example.com")
	user := suite.register("Ann", "ann@example.com")

	got, err := suite.auth.RequireAdmin(admin)
	suite.NoError(err)
	suite.Equal(admin.ID, got.ID)

	_, err = suite.auth.RequireAdmin(user)
	suite.ErrorIs(err, ErrAdminRequired)
	suite.ErrorIs(err, ErrForbidden)
}

func (suite *ServicesTestSuite) TestDeleteAccount_RemovesOnlyOwnTasks() {
	ann := suite.register("Ann", "ann@example.com")
	bob := suite.register("Bob", "bob@example.com")
	work := suite.createCategory("work")

	annTask, err := suite.tasks.Create(suite.ctx, ann.ID, TaskDraft{Title: "Report", CategoryIDs: []uint64{work.ID}})
	suite.Require().NoError(err)
	bobTask, err := suite.tasks.Create(suite.ctx, bob.ID, TaskDraft{Title: "Report", CategoryIDs: []uint64{work.ID}})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.auth.DeleteAccount(suite.ctx, ann.ID))

	_, err = suite.auth.GetUser(suite.ctx, ann.ID)
	suite.ErrorIs(err, ErrUserNotFound)
	_, err = suite.tasks.GetByID(suite.ctx, ann.ID, annTask.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	kept, err := suite.tasks.GetByID(suite.ctx, bob.ID, bobTask.ID)
	suite.Require().NoError(err)
	suite.Equal([]uint64{work.ID}, kept.CategoryIDs())

	suite.ErrorIs(suite.auth.DeleteAccount(suite.ctx, ann.ID), ErrUserNotFound)
}

// Tasks

func (suite *ServicesTestSuite) TestCreate_DefaultsAndNormalization() {
	user := suite.register("Ann", "ann@example.com")

	task := suite.createTask(user.ID, "  Buy milk  ")
	suite.Equal("Buy milk", task.Title)
	suite.Equal(models.StatusNotDone, task.Status)
	suite.Equal(models.PriorityMedium, task.Priority)

	high, err := suite.tasks.Create(suite.ctx, user.ID, TaskDraft{Title: "Pay rent", Priority: " Высокий ", Status: "В ПРОЦЕССЕ"})
	suite.Require().NoError(err)
	suite.Equal(models.PriorityHigh, high.Priority)
	suite.Equal(models.StatusInProgress, high.Status)
}

func (suite *ServicesTestSuite) TestCreate_Validation() {
	user := suite.register("Ann", "ann@example.com")
	past := fixedNow.Add(-time.Minute)

	cases := []struct {
		name  string
		draft TaskDraft
		want  error
	}{
		{"blank title", TaskDraft{Title: "   "}, ErrTitleEmpty},
		{"title too long", TaskDraft{Title: strings.Repeat("я", 101)}, ErrTitleTooLong},
		{"unknown status", TaskDraft{Title: "t", Status: "done"}, ErrInvalidStatus},
		{"unknown priority", TaskDraft{Title: "t", Priority: "urgent"}, ErrInvalidPriority},
		{"past deadline", TaskDraft{Title: "t", Deadline: &past}, ErrDeadlineInPast},
		{"unknown category", TaskDraft{Title: "t", CategoryIDs: []uint64{404}}, ErrUnresolvedCategory},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.tasks.Create(suite.ctx, user.ID, tc.draft)
			suite.ErrorIs(err, tc.want)
			suite.ErrorIs(err, ErrValidation)
		})
	}

	tasks, err := suite.tasks.ListAll(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Empty(tasks)

	task, err := suite.tasks.Create(suite.ctx, user.ID, TaskDraft{Title: strings.Repeat("я", 100)})
	suite.Require().NoError(err)
	suite.Equal(100, utf8.RuneCountInString(task.Title))
}

func (suite *ServicesTestSuite) TestCreate_DeadlineWithOffsetComparedAsInstant() {
	user := suite.register("Ann", "ann@example.com")

	// 14:30 at UTC+3 is 11:30 UTC, half an hour before fixedNow.
	moscow := time.FixedZone("MSK", 3*60*60)
	deadline := time.Date(2025, 6, 1, 14, 30, 0, 0, moscow)

	_, err := suite.tasks.Create(suite.ctx, user.ID, TaskDraft{Title: "t", Deadline: &deadline})
	suite.ErrorIs(err, ErrDeadlineInPast)
}

func (suite *ServicesTestSuite) TestCreate_DuplicateTitlePerOwner() {
	ann := suite.register("Ann", "ann@example.com")
	bob := suite.register("Bob", "bob@example.com")
	suite.createTask(ann.ID, "Buy milk")

	_, err := suite.tasks.Create(suite.ctx, ann.ID, TaskDraft{Title: " Buy milk "})
	suite.ErrorIs(err, ErrDuplicateTask)
	suite.ErrorIs(err, ErrConflict)

	_, err = suite.tasks.Create(suite.ctx, bob.ID, TaskDraft{Title: "Buy milk"})
	suite.NoError(err)
}

func (suite *ServicesTestSuite) TestUpdate_PatchSemantics() {
	user := suite.register("Ann", "ann@example.com")
	work := suite.createCategory("work")
	deadline := fixedNow.Add(24 * time.Hour)
	description := "two litres"

	task, err := suite.tasks.Create(suite.ctx, user.ID, TaskDraft{
		Title:       "Buy milk",
		Description: &description,
		Deadline:    &deadline,
		CategoryIDs: []uint64{work.ID},
	})
	suite.Require().NoError(err)

	updated, err := suite.tasks.Update(suite.ctx, user.ID, task.ID, TaskPatch{
		Title:       optional.Set("Buy oat milk"),
		Description: optional.Clear[string](),
		Priority:    optional.Set("низкий"),
	})
	suite.Require().NoError(err)
	suite.Equal("Buy oat milk", updated.Title)
	suite.Nil(updated.Description)
	suite.Equal(models.PriorityLow, updated.Priority)
	suite.Require().NotNil(updated.Deadline)
	suite.True(deadline.Equal(*updated.Deadline))
	suite.Equal([]uint64{work.ID}, updated.CategoryIDs())

	updated, err = suite.tasks.Update(suite.ctx, user.ID, task.ID, TaskPatch{
		Deadline:    optional.Clear[time.Time](),
		CategoryIDs: optional.Clear[[]uint64](),
	})
	suite.Require().NoError(err)
	suite.Nil(updated.Deadline)
	suite.Empty(updated.Categories)

	_, err = suite.tasks.Update(suite.ctx, user.ID, task.ID, TaskPatch{Title: optional.Clear[string]()})
	suite.ErrorIs(err, ErrTitleEmpty)
	_, err = suite.tasks.Update(suite.ctx, user.ID, task.ID, TaskPatch{Status: optional.Clear[string]()})
	suite.ErrorIs(err, ErrInvalidStatus)
	_, err = suite.tasks.Update(suite.ctx, user.ID, task.ID, TaskPatch{
		CategoryIDs:    optional.Set([]uint64{work.ID}),
		CategoryTitles: optional.Set([]string{"work"}),
	})
	suite.ErrorIs(err, ErrCategorySelectors)
}

func (suite *ServicesTestSuite) TestUpdate_TitleUniqueness() {
	user := suite.register("Ann", "ann@example.com")
	milk := suite.createTask(user.ID, "Buy milk")
	suite.createTask(user.ID, "Buy bread")

	_, err := suite.tasks.Update(suite.ctx, user.ID, milk.ID, TaskPatch{Title: optional.Set("Buy bread")})
	suite.ErrorIs(err, ErrDuplicateTask)

	same, err := suite.tasks.Update(suite.ctx, user.ID, milk.ID, TaskPatch{Title: optional.Set("Buy milk")})
	suite.Require().NoError(err)
	suite.Equal("Buy milk", same.Title)
}

func (suite *ServicesTestSuite) TestUpdate_PastDeadline() {
	user := suite.register("Ann", "ann@example.com")
	task := suite.createTask(user.ID, "Buy milk")
	past := fixedNow.Add(-time.Hour)

	_, err := suite.tasks.Update(suite.ctx, user.ID, task.ID, TaskPatch{Deadline: optional.Set(past)})
	suite.ErrorIs(err, ErrDeadlineInPast)

	_, err = suite.tasks.UpdateDeadline(suite.ctx, user.ID, task.ID, &past)
	suite.ErrorIs(err, ErrDeadlineInPast)

	future := fixedNow.Add(time.Hour)
	updated, err := suite.tasks.UpdateDeadline(suite.ctx, user.ID, task.ID, &future)
	suite.Require().NoError(err)
	suite.NotNil(updated.Deadline)

	cleared, err := suite.tasks.UpdateDeadline(suite.ctx, user.ID, task.ID, nil)
	suite.Require().NoError(err)
	suite.Nil(cleared.Deadline)
}

func (suite *ServicesTestSuite) TestUpdateCategories_UnknownIDIsAtomic() {
	user := suite.register("Ann", "ann@example.com")
	work := suite.createCategory("work")
	home := suite.createCategory("home")

	task, err := suite.tasks.Create(suite.ctx, user.ID, TaskDraft{Title: "Buy milk", CategoryIDs: []uint64{work.ID}})
	suite.Require().NoError(err)

	_, err = suite.tasks.UpdateCategories(suite.ctx, user.ID, task.ID, []uint64{home.ID, 999})
	suite.ErrorIs(err, ErrUnresolvedCategory)
	suite.Contains(UserMessage(err), "999")

	stored, err := suite.tasks.GetByID(suite.ctx, user.ID, task.ID)
	suite.Require().NoError(err)
	suite.Equal([]uint64{work.ID}, stored.CategoryIDs())

	replaced, err := suite.tasks.UpdateCategories(suite.ctx, user.ID, task.ID, []uint64{home.ID, home.ID})
	suite.Require().NoError(err)
	suite.Equal([]uint64{home.ID}, replaced.CategoryIDs())
}

func (suite *ServicesTestSuite) TestUpdateCategoriesByTitle() {
	user := suite.register("Ann", "ann@example.com")
	work := suite.createCategory("Work")
	task := suite.createTask(user.ID, "Buy milk")

	updated, err := suite.tasks.UpdateCategoriesByTitle(suite.ctx, user.ID, task.ID, []string{" WORK "})
	suite.Require().NoError(err)
	suite.Equal([]uint64{work.ID}, updated.CategoryIDs())

	_, err = suite.tasks.UpdateCategoriesByTitle(suite.ctx, user.ID, task.ID, []string{"work", "hobby"})
	suite.ErrorIs(err, ErrUnresolvedCategory)

	stored, err := suite.tasks.GetByID(suite.ctx, user.ID, task.ID)
	suite.Require().NoError(err)
	suite.Equal([]uint64{work.ID}, stored.CategoryIDs())
}

func (suite *ServicesTestSuite) TestForeignTaskLooksMissing() {
	ann := suite.register("Ann", "ann@example.com")
	bob := suite.register("Bob", "bob@example.com")
	task := suite.createTask(ann.ID, "Buy milk")

	_, err := suite.tasks.GetByID(suite.ctx, bob.ID, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
	_, err = suite.tasks.UpdateStatus(suite.ctx, bob.ID, task.ID, models.StatusDone)
	suite.ErrorIs(err, ErrTaskNotFound)
	suite.ErrorIs(suite.tasks.Delete(suite.ctx, bob.ID, task.ID), ErrTaskNotFound)

	_, err = suite.tasks.GetByID(suite.ctx, ann.ID, task.ID)
	suite.NoError(err)
}

func (suite *ServicesTestSuite) TestDelete() {
	user := suite.register("Ann", "ann@example.com")
	task := suite.createTask(user.ID, "Buy milk")

	suite.Require().NoError(suite.tasks.Delete(suite.ctx, user.ID, task.ID))
	suite.ErrorIs(suite.tasks.Delete(suite.ctx, user.ID, task.ID), ErrNotFound)
}

func (suite *ServicesTestSuite) TestNarrowUpdates() {
	user := suite.register("Ann", "ann@example.com")
	task := suite.createTask(user.ID, "Buy milk")
	description := "  skimmed  "

	updated, err := suite.tasks.UpdatePriority(suite.ctx, user.ID, task.ID, "ВЫСОКИЙ")
	suite.Require().NoError(err)
	suite.Equal(models.PriorityHigh, updated.Priority)

	updated, err = suite.tasks.UpdateDescription(suite.ctx, user.ID, task.ID, &description)
	suite.Require().NoError(err)
	suite.Require().NotNil(updated.Description)
	suite.Equal("skimmed", *updated.Description)

	updated, err = suite.tasks.UpdateDescription(suite.ctx, user.ID, task.ID, nil)
	suite.Require().NoError(err)
	suite.Nil(updated.Description)

	_, err = suite.tasks.UpdateStatus(suite.ctx, user.ID, task.ID, "finished")
	suite.ErrorIs(err, ErrInvalidStatus)
}

func (suite *ServicesTestSuite) TestListFiltered() {
	user := suite.register("Ann", "ann@example.com")
	other := suite.register("Bob", "bob@example.com")
	a := suite.createTask(user.ID, "a")
	b, err := suite.tasks.Create(suite.ctx, user.ID, TaskDraft{Title: "b", Priority: models.PriorityHigh})
	suite.Require().NoError(err)
	_, err = suite.tasks.Create(suite.ctx, user.ID, TaskDraft{Title: "c", Status: models.StatusDone, Priority: models.PriorityHigh})
	suite.Require().NoError(err)
	suite.createTask(other.ID, "a")

	all, err := suite.tasks.ListAll(suite.ctx, user.ID)
	suite.Require().NoError(err)
	suite.Len(all, 3)

	status := " НЕ ВЫПОЛНЕНА "
	priority := "Высокий"
	filtered, err := suite.tasks.ListFiltered(suite.ctx, user.ID, TaskFilter{Status: &status})
	suite.Require().NoError(err)
	suite.Equal([]uint64{a.ID, b.ID}, taskIDs(filtered))

	filtered, err = suite.tasks.ListFiltered(suite.ctx, user.ID, TaskFilter{Status: &status, Priority: &priority})
	suite.Require().NoError(err)
	suite.Equal([]uint64{b.ID}, taskIDs(filtered))

	unknown := "someday"
	filtered, err = suite.tasks.ListFiltered(suite.ctx, user.ID, TaskFilter{Status: &unknown})
	suite.Require().NoError(err)
	suite.Empty(filtered)
}

func taskIDs(tasks []models.Task) []uint64 {
	ids := make([]uint64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

// Categories

func (suite *ServicesTestSuite) TestCategoryCreate() {
	work := suite.createCategory("  Work ")
	suite.Equal("work", work.Title)

	_, err := suite.categories.Create(suite.ctx, "WORK")
	suite.ErrorIs(err, ErrDuplicateCategory)
	suite.ErrorIs(err, ErrConflict)

	_, err = suite.categories.Create(suite.ctx, "   ")
	suite.ErrorIs(err, ErrEmptyCategoryTitle)

	_, err = suite.categories.Create(suite.ctx, strings.Repeat("к", 51))
	suite.ErrorIs(err, ErrCategoryTooLong)
	suite.ErrorIs(err, ErrValidation)

	_, err = suite.categories.Create(suite.ctx, strings.Repeat("к", 50))
	suite.Require().NoError(err)

	list, err := suite.categories.ListAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(list, 2)
}

func (suite *ServicesTestSuite) TestCategoryDelete_KeepsTasks() {
	user := suite.register("Ann", "ann@example.com")
	work := suite.createCategory("work")
	task, err := suite.tasks.Create(suite.ctx, user.ID, TaskDraft{Title: "Report", CategoryIDs: []uint64{work.ID}})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.categories.Delete(suite.ctx, work.ID))
	suite.ErrorIs(suite.categories.Delete(suite.ctx, work.ID), ErrCategoryNotFound)

	stored, err := suite.tasks.GetByID(suite.ctx, user.ID, task.ID)
	suite.Require().NoError(err)
	suite.Empty(stored.Categories)
}

func (suite *ServicesTestSuite) TestCategoryDeleteMany_IsAtomic() {
	work := suite.createCategory("work")
	home := suite.createCategory("home")

	err := suite.categories.DeleteMany(suite.ctx, []uint64{work.ID, 404, home.ID})
	suite.ErrorIs(err, ErrCategoryNotFound)
	suite.Contains(UserMessage(err), "404")

	list, err := suite.categories.ListAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(list, 2)

	suite.Require().NoError(suite.categories.DeleteMany(suite.ctx, []uint64{work.ID, home.ID}))
	list, err = suite.categories.ListAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(list)
}

// AI drafts

func (suite *ServicesTestSuite) TestGenerateDrafts() {
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)
	generator := &stubGenerator{tasks: []GeneratedTask{
		{Title: "  Call mom ", Priority: "Высокий", Deadline: &future},
		{Title: "   "},
		{Title: "Pay bills", Priority: "asap", Deadline: &past, Description: " "},
	}}
	svc := NewTaskService(suite.store, suite.categories, generator).
		WithClock(func() time.Time { return fixedNow })

	drafts, err := svc.GenerateDrafts(suite.ctx, "call mom tomorrow, pay bills")
	suite.Require().NoError(err)
	suite.Require().Len(drafts, 2)
	suite.Equal("Call mom", drafts[0].Title)
	suite.Equal(models.PriorityHigh, drafts[0].Priority)
	suite.NotNil(drafts[0].Deadline)
	suite.Equal(models.PriorityMedium, drafts[1].Priority)
	suite.Nil(drafts[1].Deadline)
	suite.Nil(drafts[1].Description)
}

func (suite *ServicesTestSuite) TestGenerateDrafts_Errors() {
	_, err := suite.tasks.GenerateDrafts(suite.ctx, "anything")
	suite.ErrorIs(err, ErrAIServiceNotConfigured)

	svc := NewTaskService(suite.store, suite.categories, &stubGenerator{err: errors.New("boom")})
	_, err = svc.GenerateDrafts(suite.ctx, "anything")
	suite.ErrorIs(err, ErrAIRequestFailed)

	_, err = svc.GenerateDrafts(suite.ctx, "  ")
	suite.ErrorIs(err, ErrAITextEmpty)

	svc = NewTaskService(suite.store, suite.categories, &stubGenerator{tasks: []GeneratedTask{{Title: ""}}})
	_, err = svc.GenerateDrafts(suite.ctx, "anything")
	suite.ErrorIs(err, ErrAINoValidTasks)
}

// Scenarios

func (suite *ServicesTestSuite) TestScenario_CompleteTask() {
	ann := suite.register("Ann", "ann@example.com")
	task := suite.createTask(ann.ID, "Buy milk")

	pending := models.StatusNotDone
	list, err := suite.tasks.ListFiltered(suite.ctx, ann.ID, TaskFilter{Status: &pending})
	suite.Require().NoError(err)
	suite.Equal([]uint64{task.ID}, taskIDs(list))

	done, err := suite.tasks.UpdateStatus(suite.ctx, ann.ID, task.ID, models.StatusDone)
	suite.Require().NoError(err)
	suite.Equal(models.StatusDone, done.Status)

	list, err = suite.tasks.ListFiltered(suite.ctx, ann.ID, TaskFilter{Status: &pending})
	suite.Require().NoError(err)
	suite.Empty(list)
}

func (suite *ServicesTestSuite) TestScenario_NonAdminCannotDeleteCategory() {
	user := suite.register("Ann", "ann@example.com")
	work := suite.createCategory("work")

	_, err := suite.auth.RequireAdmin(user)
	suite.Require().ErrorIs(err, ErrForbidden)

	list, err := suite.categories.ListAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal([]string{work.Title}, []string{list[0].Title})
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}

func TestErrorKinds(t *testing.T) {
	detailed := withDetail(ErrCategoryNotFound, "id %d", 7)

	assert.ErrorIs(t, detailed, ErrCategoryNotFound)
	assert.ErrorIs(t, detailed, ErrNotFound)
	assert.NotErrorIs(t, detailed, ErrValidation)
	assert.Equal(t, "category not found: id 7", UserMessage(detailed))

	storage := storageError("list tasks", errors.New("disk full"))
	assert.ErrorIs(t, storage, ErrStorage)
	assert.Equal(t, "Internal server error", UserMessage(storage))
	assert.Contains(t, storage.Error(), "disk full")

	require.NoError(t, classify("noop", nil))
	assert.ErrorIs(t, classify("wrap", errors.New("x")), ErrStorage)
	assert.Same(t, ErrTaskNotFound, classify("pass", ErrTaskNotFound))
}
