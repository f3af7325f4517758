package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/generation"
	"github.com/phrazzld/focus-api/internal/platform/logger"
)

// PlannerService manages subjects, lessons, exercises and flashcards, and
// asks the generator for study strategies.
type PlannerService struct {
	generator generation.Generator
	logger    *slog.Logger
}

// NewPlannerService creates a PlannerService.
func NewPlannerService(generator generation.Generator, logger *slog.Logger) *PlannerService {
	if generator == nil {
		panic("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlannerService{generator: generator, logger: logger.With(slog.String("component", "planner_service"))}
}

// Subjects lists the subjects whose name contains query (all when empty).
func (s *PlannerService) Subjects(ws *Workspace, query string) []domain.Subject {
	return domain.SearchSubjects(ws.Stats(), query)
}

// AddSubject creates an empty subject.
func (s *PlannerService) AddSubject(ws *Workspace, name string) (domain.Subject, error) {
	var created domain.Subject
	_, err := ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		out, subj, err := domain.AddSubject(st, name)
		created = subj
		return out, err
	})
	return created, err
}

// DeleteSubject removes a subject.
func (s *PlannerService) DeleteSubject(ws *Workspace, subjectID string) error {
	_, err := ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		return domain.DeleteSubject(st, subjectID)
	})
	return err
}

// AddLesson appends a lesson to a subject.
func (s *PlannerService) AddLesson(ws *Workspace, subjectID, name string) (domain.Lesson, error) {
	var created domain.Lesson
	_, err := ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		out, lesson, err := domain.AddLesson(st, subjectID, name)
		created = lesson
		return out, err
	})
	return created, err
}

// ToggleLesson flips a lesson's completion.
func (s *PlannerService) ToggleLesson(ws *Workspace, subjectID, lessonID string) (domain.Subject, error) {
	return s.applySubject(ws, subjectID, func(st domain.UserStats) (domain.UserStats, error) {
		return domain.ToggleLesson(st, subjectID, lessonID)
	})
}

// SetLessonLink attaches study material to a lesson; an empty link clears it.
func (s *PlannerService) SetLessonLink(ws *Workspace, subjectID, lessonID, link string) (domain.Subject, error) {
	return s.applySubject(ws, subjectID, func(st domain.UserStats) (domain.UserStats, error) {
		return domain.SetLessonLink(st, subjectID, lessonID, link)
	})
}

// DeleteLesson removes a lesson.
func (s *PlannerService) DeleteLesson(ws *Workspace, subjectID, lessonID string) (domain.Subject, error) {
	return s.applySubject(ws, subjectID, func(st domain.UserStats) (domain.UserStats, error) {
		return domain.DeleteLesson(st, subjectID, lessonID)
	})
}

// AddExercise appends an exercise to a subject.
func (s *PlannerService) AddExercise(ws *Workspace, subjectID, name string) (domain.Exercise, error) {
	var created domain.Exercise
	_, err := ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		out, ex, err := domain.AddExercise(st, subjectID, name)
		created = ex
		return out, err
	})
	return created, err
}

// ToggleExercise flips an exercise's completion.
func (s *PlannerService) ToggleExercise(ws *Workspace, subjectID, exerciseID string) (domain.Subject, error) {
	return s.applySubject(ws, subjectID, func(st domain.UserStats) (domain.UserStats, error) {
		return domain.ToggleExercise(st, subjectID, exerciseID)
	})
}

// AddFlashcard adds a card that is due immediately.
func (s *PlannerService) AddFlashcard(ws *Workspace, subjectID, question, answer string) (domain.Flashcard, error) {
	var created domain.Flashcard
	now := ws.Now()
	_, err := ws.Apply(func(st domain.UserStats) (domain.UserStats, error) {
		out, card, err := domain.AddFlashcard(st, subjectID, question, answer, now)
		created = card
		return out, err
	})
	return created, err
}

// DeleteFlashcard removes a card.
func (s *PlannerService) DeleteFlashcard(ws *Workspace, subjectID, cardID string) (domain.Subject, error) {
	return s.applySubject(ws, subjectID, func(st domain.UserStats) (domain.UserStats, error) {
		return domain.DeleteFlashcard(st, subjectID, cardID)
	})
}

// GenerateStrategy asks the generator for study tips built from the
// subject and its lesson names and stores them on the subject. The model
// call happens outside the workspace lock; a subject deleted meanwhile
// yields ErrSubjectNotFound.
func (s *PlannerService) GenerateStrategy(ctx context.Context, ws *Workspace, subjectID string) (domain.Subject, error) {
	subj, ok := ws.Stats().FindSubject(subjectID)
	if !ok {
		return domain.Subject{}, domain.ErrSubjectNotFound
	}

	topics := make([]string, 0, len(subj.Lessons))
	for _, l := range subj.Lessons {
		topics = append(topics, l.Name)
	}

	text, err := s.generator.StudyStrategy(ctx, subj.Name, topics)
	if err != nil {
		return domain.Subject{}, err
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("strategy generated",
		slog.String("subject_id", subjectID),
		slog.Int("length", len(text)))

	return s.applySubject(ws, subjectID, func(st domain.UserStats) (domain.UserStats, error) {
		return domain.SetStrategy(st, subjectID, text)
	})
}

func (s *PlannerService) applySubject(
	ws *Workspace,
	subjectID string,
	fn func(domain.UserStats) (domain.UserStats, error),
) (domain.Subject, error) {
	out, err := ws.Apply(fn)
	if err != nil {
		return domain.Subject{}, err
	}
	subj, _ := out.FindSubject(subjectID)
	return subj, nil
}
