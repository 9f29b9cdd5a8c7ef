package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/projdesk/internal/database"
	"github.com/jask/projdesk/internal/database/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repo.db")
	require.NoError(t, database.RunMigrations(path))
	db, err := database.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedProject(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	require.NoError(t, repository.NewProjectRepo(db).Upsert(context.Background(), repository.Project{
		ID: id, Name: "Project " + id, StartDate: database.Today(),
	}))
}

func TestProjectRepoRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := repository.NewProjectRepo(db)

	start := database.Today()
	goal := start.Add(30 * 24 * time.Hour)
	require.NoError(t, repo.Upsert(ctx, repository.Project{ID: "p1", Name: "Robot", StartDate: start, GoalEndDate: &goal}))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Robot", got.Name)
	require.True(t, start.Equal(got.StartDate))
	require.NotNil(t, got.GoalEndDate)
	require.True(t, goal.Equal(*got.GoalEndDate))
	require.Nil(t, got.HardDeadline)

	got.Name = "Robot 2"
	require.NoError(t, repo.Upsert(ctx, *got))
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Robot 2", list[0].Name)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestSubsystemRepoResponsibleMember(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1")

	members := repository.NewMemberRepo(db)
	require.NoError(t, members.Upsert(ctx, repository.Member{ID: "m1", ProjectID: "p1", Username: "ada", FirstName: "Ada"}))

	subs := repository.NewSubsystemRepo(db)
	owner := "m1"
	require.NoError(t, subs.Upsert(ctx, repository.Subsystem{
		ID: "s1", ProjectID: "p1", Name: "Drive", Status: repository.StatusInProgress, ResponsibleMemberID: &owner,
	}))
	require.NoError(t, subs.Upsert(ctx, repository.Subsystem{ID: "s2", ProjectID: "p1", Name: "Arm", Status: repository.StatusNotStarted}))

	list, err := subs.List(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Arm", list[0].Name)
	require.Nil(t, list[0].ResponsibleMemberID)
	require.Equal(t, "m1", *list[1].ResponsibleMemberID)

	ok, err := members.Delete(ctx, "m1")
	require.NoError(t, err)
	require.True(t, ok)

	s1, err := subs.Get(ctx, "s1")
	require.NoError(t, err)
	require.Nil(t, s1.ResponsibleMemberID, "deleting the member clears ownership")
}

func TestSubsystemNamesUniquePerProject(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1")
	subs := repository.NewSubsystemRepo(db)

	require.NoError(t, subs.Upsert(ctx, repository.Subsystem{ID: "s1", ProjectID: "p1", Name: "Drive", Status: repository.StatusNotStarted}))
	require.Error(t, subs.Upsert(ctx, repository.Subsystem{ID: "s2", ProjectID: "p1", Name: "Drive", Status: repository.StatusNotStarted}))
}

func TestTaskRepoFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1")
	subs := repository.NewSubsystemRepo(db)
	require.NoError(t, subs.Upsert(ctx, repository.Subsystem{ID: "s1", ProjectID: "p1", Name: "Drive", Status: repository.StatusNotStarted}))
	require.NoError(t, subs.Upsert(ctx, repository.Subsystem{ID: "s2", ProjectID: "p1", Name: "Arm", Status: repository.StatusNotStarted}))

	tasks := repository.NewTaskRepo(db)
	for _, task := range []repository.Task{
		{ID: "t1", ProjectID: "p1", SubsystemID: "s1", Title: "Mount motors", Priority: repository.PriorityLow, Progress: 20},
		{ID: "t2", ProjectID: "p1", SubsystemID: "s1", Title: "Wire motors", Priority: repository.PriorityCritical, Progress: 60},
		{ID: "t3", ProjectID: "p1", SubsystemID: "s2", Title: "Cut plates", Priority: repository.PriorityHigh, Progress: 100, Completed: true},
	} {
		require.NoError(t, tasks.Upsert(ctx, task))
	}

	drive, err := tasks.List(ctx, repository.TaskFilters{SubsystemID: "s1"})
	require.NoError(t, err)
	require.Len(t, drive, 2)
	require.Equal(t, "t2", drive[0].ID, "critical sorts first")

	search, err := tasks.List(ctx, repository.TaskFilters{ProjectID: "p1", Search: "motors"})
	require.NoError(t, err)
	require.Len(t, search, 2)

	open, err := tasks.List(ctx, repository.TaskFilters{ProjectID: "p1", OpenOnly: true})
	require.NoError(t, err)
	require.Len(t, open, 2)

	progress, err := tasks.ProgressBySubsystem(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"s1": 40, "s2": 100}, progress)

	ok, err := subs.Delete(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	all, err := tasks.List(ctx, repository.TaskFilters{})
	require.NoError(t, err)
	require.Len(t, all, 1, "tasks cascade with their subsystem")

	ok, err = tasks.Delete(ctx, "t1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTaskDates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedProject(t, db, "p1")
	require.NoError(t, repository.NewSubsystemRepo(db).Upsert(ctx, repository.Subsystem{ID: "s1", ProjectID: "p1", Name: "Drive", Status: repository.StatusNotStarted}))

	tasks := repository.NewTaskRepo(db)
	start := database.Today()
	require.NoError(t, tasks.Upsert(ctx, repository.Task{ID: "t1", ProjectID: "p1", SubsystemID: "s1", Title: "x", Priority: repository.PriorityMedium, StartDate: &start}))

	got, err := tasks.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got.StartDate)
	require.True(t, start.Equal(*got.StartDate))
	require.Nil(t, got.EndDate)
}
