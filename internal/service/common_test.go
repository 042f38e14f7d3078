package service_test

import (
	"context"
	"mime/multipart"
	"sync"

	"eventify-backend/internal/database"
	"eventify-backend/internal/model"
	"eventify-backend/internal/queue"

	"github.com/jackc/pgx/v5"
)

// fakeTx records how a transaction ended. Statement methods are never reached
// because repositories are mocked.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	database.DB
	tx       *fakeTx
	beginErr error
}

func (d *fakeDB) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return d.tx, nil
}

type recordingQueue struct {
	queue.BlobQueue
	mu   sync.Mutex
	jobs []*model.BlobJob
}

func (q *recordingQueue) PublishBlob(ctx context.Context, job *model.BlobJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) paths() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.jobs))
	for _, j := range q.jobs {
		out = append(out, j.Path)
	}
	return out
}

func upload(name string) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: 16}
}

func validInput() model.EventInput {
	return model.EventInput{
		EventName:        "Go Meetup",
		Category:         "Tech",
		OrganizationName: "Gophers",
		OrganizerName:    "Sam",
		OrganizerEmail:   "sam@example.com",
		MobileNumber:     "5550100",
		Address:          "1 Main St",
		City:             "Springfield",
		Date:             "2026-05-01",
		Time:             "18:30",
	}
}
