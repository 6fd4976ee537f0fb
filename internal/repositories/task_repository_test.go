package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskboard.com/taskboard/internal/constants"
	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/policy"
)

func TestTaskRepository_ListVisibility(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	alice := seedUser(t, store.Users(), "alice")
	bob := seedUser(t, store.Users(), "bob")
	carol := seedUser(t, store.Users(), "carol")

	owned := seedTask(t, store.Tasks(), alice.ID, "alice owns")
	assigned := seedTask(t, store.Tasks(), bob.ID, "assigned to alice", withAssignee(alice.ID))
	seedTask(t, store.Tasks(), carol.ID, "created by alice", withCreator(alice.ID))
	seedTask(t, store.Tasks(), bob.ID, "bob only")

	tasks, total, err := store.Tasks().List(ctx, policy.TaskFilter{ParticipantID: alice.ID}, 0, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 visible tasks, got %d", total)
	}

	got := map[string]bool{}
	for _, task := range tasks {
		got[task.ID] = true
	}
	if !got[owned.ID] || !got[assigned.ID] {
		t.Errorf("expected owned and assigned tasks, got %v", got)
	}

	_, total, err = store.Tasks().List(ctx, policy.TaskFilter{}, 0, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 4 {
		t.Errorf("expected unrestricted filter to see 4 tasks, got %d", total)
	}
}

func TestTaskRepository_ListFilters(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()
	owner := seedUser(t, store.Users(), "owner")

	seedTask(t, store.Tasks(), owner.ID, "Write REPORT draft", withTags("work", "urgent"))
	seedTask(t, store.Tasks(), owner.ID, "buy milk", withTags("home"))
	seedTask(t, store.Tasks(), owner.ID, "report expenses", withTags("work"), withStatus(constants.StatusCompleted))
	seedTask(t, store.Tasks(), owner.ID, "100% done_ish")
	seedTask(t, store.Tasks(), owner.ID, "École meeting")

	tests := []struct {
		name   string
		filter policy.TaskFilter
		want   int64
	}{
		{name: "search is case insensitive", filter: policy.TaskFilter{Search: "report"}, want: 2},
		{name: "search treats wildcards literally", filter: policy.TaskFilter{Search: "0% d"}, want: 1},
		{name: "underscore is literal", filter: policy.TaskFilter{Search: "e_i"}, want: 1},
		{name: "non-ascii lower query", filter: policy.TaskFilter{Search: "école"}, want: 1},
		{name: "non-ascii upper query", filter: policy.TaskFilter{Search: "ÉCOLE"}, want: 1},
		{name: "non-ascii exact case", filter: policy.TaskFilter{Search: "École MEETING"}, want: 1},
		{name: "status", filter: policy.TaskFilter{Status: constants.StatusCompleted}, want: 1},
		{name: "tags any-of", filter: policy.TaskFilter{Tags: []string{"home", "urgent"}}, want: 2},
		{name: "unknown tag", filter: policy.TaskFilter{Tags: []string{"nope"}}, want: 0},
		{
			name:   "filters are combined",
			filter: policy.TaskFilter{Search: "report", Tags: []string{"work"}, Status: constants.StatusPending},
			want:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := store.Tasks().List(ctx, tt.filter, 0, 20)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if total != tt.want {
				t.Errorf("expected %d tasks, got %d", tt.want, total)
			}
		})
	}
}

func TestTaskRepository_ListPagination(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()
	owner := seedUser(t, store.Users(), "pager")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = seedTask(t, store.Tasks(), owner.ID, "task", withCreatedAt(base.Add(time.Duration(i)*time.Minute))).ID
	}

	page, total, err := store.Tasks().List(ctx, policy.TaskFilter{}, 20, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 25 {
		t.Errorf("expected total 25, got %d", total)
	}
	if len(page) != 5 {
		t.Fatalf("expected 5 tasks on page 2, got %d", len(page))
	}
	// newest first, so the last page holds the five oldest
	if page[4].ID != ids[0] {
		t.Errorf("expected oldest task last, got %s", page[4].ID)
	}

	empty, total, err := store.Tasks().List(ctx, policy.TaskFilter{Search: "nothing"}, 0, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 0 || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil page, got %v (total %d)", empty, total)
	}
}

func TestTaskRepository_UpdatePartial(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()
	owner := seedUser(t, store.Users(), "updater")

	due := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	task := seedTask(t, store.Tasks(), owner.ID, "first draft", withTags("a", "b"), func(task *model.Task) { task.DueDate = &due })

	status := "completed"
	changes, err := policy.NewTaskChanges(policy.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("changes: %v", err)
	}

	updated, err := store.Tasks().Update(ctx, task.ID, changes)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != constants.StatusCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}
	if updated.Description != "first draft" {
		t.Errorf("description changed to %q", updated.Description)
	}
	if !reflect.DeepEqual([]string(updated.Tags), []string{"a", "b"}) {
		t.Errorf("tags changed to %v", updated.Tags)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Errorf("due date changed to %v", updated.DueDate)
	}

	changes, err = policy.NewTaskChanges(policy.TaskPatch{TagsSet: true, Tags: []string{"c"}, DueDateSet: true})
	if err != nil {
		t.Fatalf("changes: %v", err)
	}
	updated, err = store.Tasks().Update(ctx, task.ID, changes)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !reflect.DeepEqual([]string(updated.Tags), []string{"c"}) {
		t.Errorf("expected tags replaced, got %v", updated.Tags)
	}
	if updated.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", updated.DueDate)
	}

	_, err = store.Tasks().Update(ctx, uuid.NewString(), changes)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskRepository_SetAssigneeAndDelete(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()
	owner := seedUser(t, store.Users(), "owner")
	helper := seedUser(t, store.Users(), "helper")

	task := seedTask(t, store.Tasks(), owner.ID, "needs help")

	updated, err := store.Tasks().SetAssignee(ctx, task.ID, helper.ID)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if !updated.IsAssignedTo(helper.ID) {
		t.Errorf("expected assignee %s, got %v", helper.ID, updated.AssigneeID)
	}

	if err := store.Tasks().Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Tasks().FindByID(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Tasks().Delete(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGormStore_CascadeDelete(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	victim := seedUser(t, store.Users(), "victim")
	other := seedUser(t, store.Users(), "other")

	for i := 0; i < 3; i++ {
		seedTask(t, store.Tasks(), victim.ID, "owned")
	}
	for i := 0; i < 2; i++ {
		seedTask(t, store.Tasks(), other.ID, "assigned", withAssignee(victim.ID))
	}
	seedTask(t, store.Tasks(), other.ID, "created", withCreator(victim.ID))
	// owned and assigned at once must only count once
	seedTask(t, store.Tasks(), victim.ID, "both", withAssignee(victim.ID))
	survivor := seedTask(t, store.Tasks(), other.ID, "untouched")

	var removed int64
	err := store.WithinTx(ctx, func(tasks TaskRepository, users UserRepository) error {
		n, err := tasks.DeleteByParticipant(ctx, victim.ID)
		if err != nil {
			return err
		}
		removed = n
		return users.Delete(ctx, victim.ID)
	})
	if err != nil {
		t.Fatalf("cascade failed: %v", err)
	}
	if removed != 7 {
		t.Errorf("expected 7 tasks removed, got %d", removed)
	}

	if _, err := store.Users().FindByID(ctx, victim.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected user gone, got %v", err)
	}
	_, total, _ := store.Tasks().List(ctx, policy.TaskFilter{}, 0, 100)
	if total != 1 {
		t.Errorf("expected only the unrelated task left, got %d", total)
	}
	if _, err := store.Tasks().FindByID(ctx, survivor.ID); err != nil {
		t.Errorf("unrelated task removed: %v", err)
	}
}

func TestGormStore_WithinTxRollsBack(t *testing.T) {
	store := NewGormStore(setupTestDB(t))
	ctx := context.Background()

	user := seedUser(t, store.Users(), "kept")
	seedTask(t, store.Tasks(), user.ID, "kept task")

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tasks TaskRepository, users UserRepository) error {
		if _, err := tasks.DeleteByParticipant(ctx, user.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	_, total, _ := store.Tasks().List(ctx, policy.TaskFilter{ParticipantID: user.ID}, 0, 10)
	if total != 1 {
		t.Errorf("expected rollback to keep the task, got %d", total)
	}
}

func TestTaskRepository_SearchTextFollowsDescription(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()
	owner := seedUser(t, store.Users(), "owner")
	task := seedTask(t, store.Tasks(), owner.ID, "plain")

	description := "Überprüfung Q3"
	if _, err := store.Tasks().Update(ctx, task.ID, policy.TaskChanges{Description: &description}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	_, total, err := store.Tasks().List(ctx, policy.TaskFilter{Search: "überprüfung"}, 0, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected updated description to be searchable, got %d", total)
	}
	_, total, _ = store.Tasks().List(ctx, policy.TaskFilter{Search: "plain"}, 0, 20)
	if total != 0 {
		t.Errorf("expected old description to be gone from search, got %d", total)
	}
}

func TestTaskRepository_BackfillSearchText(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()
	owner := seedUser(t, store.Users(), "owner")
	task := seedTask(t, store.Tasks(), owner.ID, "Ärger mit Kunden")

	if err := db.Model(&model.Task{}).Where("id = ?", task.ID).Update("search_text", "").Error; err != nil {
		t.Fatalf("reset search text: %v", err)
	}

	n, err := NewTaskRepository(db).BackfillSearchText(ctx)
	if err != nil {
		t.Fatalf("backfill failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row backfilled, got %d", n)
	}

	_, total, _ := store.Tasks().List(ctx, policy.TaskFilter{Search: "ärger"}, 0, 20)
	if total != 1 {
		t.Errorf("expected backfilled task to be searchable, got %d", total)
	}

	if n, _ := NewTaskRepository(db).BackfillSearchText(ctx); n != 0 {
		t.Errorf("expected second backfill to be a no-op, got %d", n)
	}
}
