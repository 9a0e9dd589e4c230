// Package firestore stores questions in a Cloud Firestore collection,
// the document layout used by the Learning Time web app.
package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"learningtime/internal/config"
	"learningtime/internal/models"
	"learningtime/internal/repository"
)

// Store implements repository.QuestionStore on top of Firestore
type Store struct {
	client     *firestore.Client
	collection string
}

var _ repository.QuestionStore = (*Store)(nil)

// record is the Firestore document shape of a question
type record struct {
	Path        string            `firestore:"path"`
	Course      string            `firestore:"course"`
	CourseOrder int               `firestore:"courseOrder"`
	Module      string            `firestore:"module"`
	ModuleOrder int               `firestore:"moduleOrder"`
	Question    string            `firestore:"question"`
	Answers     map[string]string `firestore:"answers"`
	Guess       string            `firestore:"guess,omitempty"`
	Status      string            `firestore:"status"`
	CreatedAt   time.Time         `firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time         `firestore:"updatedAt,serverTimestamp"`
}

// New connects to Firestore using the service account in cfg. When no
// client email is configured, application default credentials are used.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.GCPProjectID == "" {
		return nil, errors.New("GCP_PROJECT_ID is required for the firestore backend")
	}

	var opts []option.ClientOption
	if cfg.GCPClientEmail != "" {
		creds, err := credentialsJSON(cfg.GCPProjectID, cfg.GCPClientEmail, cfg.GCPPrivateKey)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithCredentialsJSON(creds))
	}

	client, err := firestore.NewClient(ctx, cfg.GCPProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	return &Store{client: client, collection: cfg.FirestoreCollection}, nil
}

// Close releases the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

// credentialsJSON builds a service account key file from its parts.
// Private keys copied from env files usually carry literal "\n" sequences.
func credentialsJSON(projectID, clientEmail, privateKey string) ([]byte, error) {
	if privateKey == "" {
		return nil, errors.New("GCP_PRIVATE_KEY is required when GCP_CLIENT_EMAIL is set")
	}

	return json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   projectID,
		"client_email": clientEmail,
		"private_key":  strings.ReplaceAll(privateKey, `\n`, "\n"),
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
}

// ListQuestions returns the collection ordered by courseOrder
func (s *Store) ListQuestions(ctx context.Context) ([]models.Question, error) {
	docs, err := s.client.Collection(s.collection).
		OrderBy("courseOrder", firestore.Asc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	questions := make([]models.Question, 0, len(docs))
	for _, doc := range docs {
		var rec record
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode question %s: %w", doc.Ref.ID, err)
		}
		questions = append(questions, fromRecord(doc.Ref.ID, rec))
	}
	return questions, nil
}

// RecordGuess updates the guess field of one document
func (s *Store) RecordGuess(ctx context.Context, id, guess string) error {
	_, err := s.client.Collection(s.collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "guess", Value: guess},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if status.Code(err) == codes.NotFound {
		return repository.ErrQuestionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to record guess: %w", err)
	}
	return nil
}

// AddQuestions creates one document per question inside a transaction
func (s *Store) AddQuestions(ctx context.Context, questions []models.Question) ([]string, error) {
	col := s.client.Collection(s.collection)

	refs := make([]*firestore.DocumentRef, len(questions))
	for i, q := range questions {
		if q.ID != "" {
			refs[i] = col.Doc(q.ID)
		} else {
			refs[i] = col.NewDoc()
		}
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for i, q := range questions {
			if err := tx.Create(refs[i], toRecord(q)); err != nil {
				return fmt.Errorf("question %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add questions: %w", err)
	}

	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	return ids, nil
}

// DeleteByCourse removes all documents whose course field matches
func (s *Store) DeleteByCourse(ctx context.Context, course string) (int, error) {
	docs, err := s.client.Collection(s.collection).
		Where("course", "==", course).
		Documents(ctx).
		GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to query course %q: %w", course, err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to queue delete of %s: %w", doc.Ref.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return deleted, fmt.Errorf("failed to delete question: %w", err)
		}
		deleted++
	}
	return deleted, nil
}

func toRecord(q models.Question) record {
	st := q.Status
	if st == "" {
		st = models.StatusPending
	}
	return record{
		Path:        q.Path,
		Course:      q.Course,
		CourseOrder: q.CourseOrder,
		Module:      q.Module,
		ModuleOrder: q.ModuleOrder,
		Question:    q.Question,
		Answers:     q.Answers.Map(),
		Guess:       q.Guess,
		Status:      string(st),
	}
}

// fromRecord converts a document back to a question. Firestore maps carry
// no order, so answers come back sorted by key.
func fromRecord(id string, rec record) models.Question {
	return models.Question{
		ID:          id,
		Path:        rec.Path,
		Course:      rec.Course,
		CourseOrder: rec.CourseOrder,
		Module:      rec.Module,
		ModuleOrder: rec.ModuleOrder,
		Question:    rec.Question,
		Answers:     models.AnswersFromMap(rec.Answers),
		Guess:       rec.Guess,
		Status:      models.Status(rec.Status),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
