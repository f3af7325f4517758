package domain

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddSubject appends a new, empty subject.
func AddSubject(s UserStats, name string) (UserStats, Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, Subject{}, NewValidationError("name", "is required", ErrEmptyContent)
	}

	subj := Subject{
		ID:         uuid.NewString(),
		Name:       name,
		Lessons:    []Lesson{},
		Exercises:  []Exercise{},
		Flashcards: []Flashcard{},
	}
	out := s.Clone()
	out.Subjects = append(out.Subjects, subj)
	return out, subj, nil
}

// DeleteSubject removes a subject and everything nested in it.
func DeleteSubject(s UserStats, subjectID string) (UserStats, error) {
	i := s.subjectIndex(subjectID)
	if i < 0 {
		return s, ErrSubjectNotFound
	}
	out := s.Clone()
	out.Subjects = slices.Delete(out.Subjects, i, i+1)
	return out, nil
}

// AddLesson appends an incomplete lesson to a subject.
func AddLesson(s UserStats, subjectID, name string) (UserStats, Lesson, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, Lesson{}, NewValidationError("name", "is required", ErrEmptyContent)
	}
	lesson := Lesson{ID: uuid.NewString(), Name: name}
	out, err := s.updateSubject(subjectID, func(subj *Subject) error {
		subj.Lessons = append(subj.Lessons, lesson)
		return nil
	})
	return out, lesson, err
}

// ToggleLesson flips a lesson's completion flag.
func ToggleLesson(s UserStats, subjectID, lessonID string) (UserStats, error) {
	return s.updateLesson(subjectID, lessonID, func(l *Lesson) {
		l.Completed = !l.Completed
	})
}

// SetLessonLink attaches a study link to a lesson. An empty link clears it.
func SetLessonLink(s UserStats, subjectID, lessonID, link string) (UserStats, error) {
	link = strings.TrimSpace(link)
	return s.updateLesson(subjectID, lessonID, func(l *Lesson) {
		l.Link = link
	})
}

// DeleteLesson removes a lesson from a subject.
func DeleteLesson(s UserStats, subjectID, lessonID string) (UserStats, error) {
	return s.updateSubject(subjectID, func(subj *Subject) error {
		i := slices.IndexFunc(subj.Lessons, func(l Lesson) bool { return l.ID == lessonID })
		if i < 0 {
			return ErrLessonNotFound
		}
		subj.Lessons = slices.Delete(subj.Lessons, i, i+1)
		return nil
	})
}

// AddExercise appends an incomplete exercise to a subject.
func AddExercise(s UserStats, subjectID, name string) (UserStats, Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, Exercise{}, NewValidationError("name", "is required", ErrEmptyContent)
	}
	ex := Exercise{ID: uuid.NewString(), Name: name}
	out, err := s.updateSubject(subjectID, func(subj *Subject) error {
		subj.Exercises = append(subj.Exercises, ex)
		return nil
	})
	return out, ex, err
}

// ToggleExercise flips an exercise's completion flag.
func ToggleExercise(s UserStats, subjectID, exerciseID string) (UserStats, error) {
	return s.updateSubject(subjectID, func(subj *Subject) error {
		i := slices.IndexFunc(subj.Exercises, func(e Exercise) bool { return e.ID == exerciseID })
		if i < 0 {
			return ErrExerciseNotFound
		}
		subj.Exercises[i].Completed = !subj.Exercises[i].Completed
		return nil
	})
}

// AddFlashcard attaches a question/answer pair, due for review immediately.
func AddFlashcard(s UserStats, subjectID, question, answer string, now time.Time) (UserStats, Flashcard, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" {
		return s, Flashcard{}, NewValidationError("question", "is required", ErrEmptyContent)
	}
	if answer == "" {
		return s, Flashcard{}, NewValidationError("answer", "is required", ErrEmptyContent)
	}

	card := Flashcard{ID: uuid.NewString(), Question: question, Answer: answer, NextReviewDate: now}
	out, err := s.updateSubject(subjectID, func(subj *Subject) error {
		subj.Flashcards = append(subj.Flashcards, card)
		return nil
	})
	return out, card, err
}

// DeleteFlashcard removes a flashcard from a subject.
func DeleteFlashcard(s UserStats, subjectID, cardID string) (UserStats, error) {
	return s.updateSubject(subjectID, func(subj *Subject) error {
		i := slices.IndexFunc(subj.Flashcards, func(c Flashcard) bool { return c.ID == cardID })
		if i < 0 {
			return ErrFlashcardNotFound
		}
		subj.Flashcards = slices.Delete(subj.Flashcards, i, i+1)
		return nil
	})
}

// SetStrategy stores generated study advice on a subject.
func SetStrategy(s UserStats, subjectID, strategy string) (UserStats, error) {
	return s.updateSubject(subjectID, func(subj *Subject) error {
		subj.AIStrategy = strategy
		return nil
	})
}

// FindSubject returns the subject with the given id.
func (s UserStats) FindSubject(subjectID string) (Subject, bool) {
	i := s.subjectIndex(subjectID)
	if i < 0 {
		return Subject{}, false
	}
	return s.Subjects[i], true
}

// SearchSubjects returns subjects whose name contains query, ignoring case.
// An empty query matches everything.
func SearchSubjects(s UserStats, query string) []Subject {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Subject, 0, len(s.Subjects))
	for _, subj := range s.Subjects {
		if query == "" || strings.Contains(strings.ToLower(subj.Name), query) {
			out = append(out, subj)
		}
	}
	return out
}

// CompletedLessons counts completed lessons in the subject.
func (subj Subject) CompletedLessons() int {
	n := 0
	for _, l := range subj.Lessons {
		if l.Completed {
			n++
		}
	}
	return n
}

// Progress is the rounded percentage of completed lessons, 0 with no lessons.
func (subj Subject) Progress() int {
	return percent(subj.CompletedLessons(), len(subj.Lessons))
}

// OverallProgress is the rounded percentage of completed lessons across all subjects.
func OverallProgress(s UserStats) int {
	done, total := 0, 0
	for _, subj := range s.Subjects {
		done += subj.CompletedLessons()
		total += len(subj.Lessons)
	}
	return percent(done, total)
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func (s UserStats) subjectIndex(id string) int {
	return slices.IndexFunc(s.Subjects, func(subj Subject) bool { return subj.ID == id })
}

// updateSubject applies fn to a cloned copy of the subject and returns the new
// snapshot. If fn fails the original snapshot is returned untouched.
func (s UserStats) updateSubject(subjectID string, fn func(*Subject) error) (UserStats, error) {
	i := s.subjectIndex(subjectID)
	if i < 0 {
		return s, ErrSubjectNotFound
	}
	out := s.Clone()
	if err := fn(&out.Subjects[i]); err != nil {
		return s, err
	}
	return out, nil
}

func (s UserStats) updateLesson(subjectID, lessonID string, fn func(*Lesson)) (UserStats, error) {
	return s.updateSubject(subjectID, func(subj *Subject) error {
		i := slices.IndexFunc(subj.Lessons, func(l Lesson) bool { return l.ID == lessonID })
		if i < 0 {
			return ErrLessonNotFound
		}
		fn(&subj.Lessons[i])
		return nil
	})
}
