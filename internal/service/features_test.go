package service

import (
	"context"
	"testing"

	"github.com/phrazzld/focus-api/internal/domain"
	"github.com/phrazzld/focus-api/internal/events"
	"github.com/phrazzld/focus-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlannerService(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ws := f.anon(t)
	gen := &stubGenerator{text: "1. Review daily\n2. Practice"}
	planner := NewPlannerService(gen, quietLogger())
	ctx := context.Background()

	subj, err := planner.AddSubject(ws, "  Physics ")
	require.NoError(t, err)
	assert.Equal(t, "Physics", subj.Name)

	_, err = planner.AddSubject(ws, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyContent)

	lesson, err := planner.AddLesson(ws, subj.ID, "Kinematics")
	require.NoError(t, err)
	_, err = planner.AddLesson(ws, subj.ID, "Dynamics")
	require.NoError(t, err)

	updated, err := planner.ToggleLesson(ws, subj.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress())

	updated, err = planner.SetLessonLink(ws, subj.ID, lesson.ID, "https://example.com/kinematics")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/kinematics", updated.Lessons[0].Link)

	ex, err := planner.AddExercise(ws, subj.ID, "Problem set 1")
	require.NoError(t, err)
	updated, err = planner.ToggleExercise(ws, subj.ID, ex.ID)
	require.NoError(t, err)
	assert.True(t, updated.Exercises[0].Completed)

	card, err := planner.AddFlashcard(ws, subj.ID, "F = ?", "m * a")
	require.NoError(t, err)
	assert.Equal(t, testNow, card.NextReviewDate)

	updated, err = planner.GenerateStrategy(ctx, ws, subj.ID)
	require.NoError(t, err)
	assert.Equal(t, gen.text, updated.AIStrategy)
	assert.Equal(t, "Physics", gen.subject)
	assert.Equal(t, []string{"Kinematics", "Dynamics"}, gen.topics)

	assert.Len(t, planner.Subjects(ws, "phys"), 1)
	assert.Empty(t, planner.Subjects(ws, "chem"))

	updated, err = planner.DeleteFlashcard(ws, subj.ID, card.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Flashcards)

	updated, err = planner.DeleteLesson(ws, subj.ID, lesson.ID)
	require.NoError(t, err)
	assert.Len(t, updated.Lessons, 1)

	require.NoError(t, planner.DeleteSubject(ws, subj.ID))
	assert.Empty(t, ws.Stats().Subjects)

	_, err = planner.GenerateStrategy(ctx, ws, subj.ID)
	assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
	_, err = planner.AddLesson(ws, subj.ID, "x")
	assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
}

func TestShopServicePurchase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("buy then apply theme", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		ws := f.anon(t)
		_, err := ws.Apply(func(s domain.UserStats) (domain.UserStats, error) {
			s.Neurons = 300
			return s, nil
		})
		require.NoError(t, err)
		shop := NewShopService(f.events, quietLogger())

		out, err := shop.Purchase(ctx, ws, "tema_forest")
		require.NoError(t, err)
		assert.Equal(t, 150, out.Neurons)
		assert.Equal(t, domain.DefaultTheme, out.ActiveTheme)

		out, err = shop.Purchase(ctx, ws, "tema_forest")
		require.NoError(t, err)
		assert.Equal(t, 150, out.Neurons)
		assert.Equal(t, "theme-forest", out.ActiveTheme)

		purchases := f.events.ofType(events.TypePurchase)
		require.Len(t, purchases, 1)
		var payload events.PurchasePayload
		require.NoError(t, purchases[0].UnmarshalPayload(&payload))
		assert.Equal(t, events.PurchasePayload{ItemID: "tema_forest", Spent: 150}, payload)

		for _, item := range shop.Catalog(ws) {
			if item.ID == "tema_forest" {
				assert.True(t, item.Owned)
				assert.True(t, item.Active)
			}
		}
	})

	t.Run("insufficient balance changes nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		ws := f.anon(t)
		shop := NewShopService(f.events, quietLogger())

		_, err := shop.Purchase(ctx, ws, "tema_ocean")
		assert.ErrorIs(t, err, domain.ErrInsufficientNeurons)
		assert.Equal(t, domain.InitialNeurons, ws.Stats().Neurons)
		assert.Empty(t, f.events.ofType(events.TypePurchase))
		assert.Zero(t, f.local.saves)
	})

	t.Run("multiplier cannot stack", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		ws := f.anon(t)
		shop := NewShopService(nil, nil)

		_, err := shop.Purchase(ctx, ws, domain.MultiplierItemID)
		require.NoError(t, err)
		_, err = shop.Purchase(ctx, ws, domain.MultiplierItemID)
		assert.ErrorIs(t, err, domain.ErrMultiplierActive)
		assert.Equal(t, domain.InitialNeurons-50, ws.Stats().Neurons)
	})

	t.Run("unknown item", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		_, err := NewShopService(nil, nil).Purchase(ctx, f.anon(t), "nope")
		assert.ErrorIs(t, err, domain.ErrUnknownItem)
	})
}

func TestPreferencesService(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ws := f.anon(t)
	prefs := NewPreferencesService()

	_, err := prefs.SelectTheme(ws, "theme-ocean")
	assert.ErrorIs(t, err, domain.ErrItemNotOwned)

	out, err := prefs.SelectTheme(ws, domain.LightTheme)
	require.NoError(t, err)
	assert.Equal(t, domain.LightTheme, out.ActiveTheme)

	out, err = prefs.ToggleSidebar(ws)
	require.NoError(t, err)
	assert.False(t, out.SidebarOpen)

	bell, err := prefs.AddCustomAudio(ws, "Bell", "data:audio/wav;base64,BBBB", domain.AudioKindAlarm)
	require.NoError(t, err)
	out, err = prefs.SetAlarm(ws, &bell.ID)
	require.NoError(t, err)
	require.NotNil(t, out.ActiveAlarm)
	assert.Equal(t, bell.Data, *out.ActiveAlarm)

	out, err = prefs.DeleteCustomAudio(ws, bell.ID)
	require.NoError(t, err)
	assert.Nil(t, out.ActiveAlarm)
	assert.Empty(t, out.UploadedAudio)

	out, err = prefs.SetAlarm(ws, nil)
	require.NoError(t, err)
	assert.Nil(t, out.ActiveAlarm)

	_, err = prefs.SetAmbientSound(ws, &bell.ID)
	assert.ErrorIs(t, err, domain.ErrAudioNotFound)
}

func TestMentorServiceAsk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("charges and records both turns", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		ws := f.anon(t)
		_, err := NewPlannerService(&stubGenerator{}, nil).AddSubject(ws, "History")
		require.NoError(t, err)
		gen := &stubGenerator{text: "Try spaced repetition."}
		mentor := NewMentorService(gen, quietLogger())

		reply, err := mentor.Ask(ctx, ws, "How do I memorise dates?")
		require.NoError(t, err)
		assert.Equal(t, domain.ChatRoleModel, reply.Role)
		assert.Equal(t, "Try spaced repetition.", reply.Text)

		history := mentor.History(ws)
		require.Len(t, history, 2)
		assert.Equal(t, domain.ChatRoleUser, history[0].Role)
		assert.Equal(t, domain.InitialNeurons-domain.MentorMessageCost, ws.Stats().Neurons)
		assert.Empty(t, gen.history)
		assert.Equal(t, []string{"History"}, gen.subjects)

		require.NoError(t, mentor.Clear(ws))
		assert.Empty(t, mentor.History(ws))
	})

	t.Run("model failure keeps the charge", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		ws := f.anon(t)
		mentor := NewMentorService(&stubGenerator{err: errBoom}, quietLogger())

		reply, err := mentor.Ask(ctx, ws, "Help")
		require.NoError(t, err)
		assert.Equal(t, generation.FallbackMentorReply, reply.Text)
		assert.Equal(t, domain.InitialNeurons-domain.MentorMessageCost, ws.Stats().Neurons)
	})

	t.Run("broke users are refused before the model is called", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		ws := f.anon(t)
		_, err := ws.Apply(func(s domain.UserStats) (domain.UserStats, error) {
			s.Neurons = 4
			return s, nil
		})
		require.NoError(t, err)
		gen := &stubGenerator{text: "unused"}

		_, err = NewMentorService(gen, quietLogger()).Ask(ctx, ws, "Help")
		assert.ErrorIs(t, err, domain.ErrInsufficientNeurons)
		assert.Empty(t, ws.Stats().ChatHistory)
		assert.Nil(t, gen.subjects)
	})

	t.Run("blank question", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, false)
		_, err := NewMentorService(&stubGenerator{}, nil).Ask(ctx, f.anon(t), " ")
		assert.ErrorIs(t, err, domain.ErrEmptyContent)
	})
}

func TestProgressService(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ws := f.anon(t)
	_, err := ws.Apply(func(s domain.UserStats) (domain.UserStats, error) {
		s.StudyHistory = []string{"2026-03-11", "2026-03-12", "2026-03-13", "2026-03-14", "2026-03-15"}
		s.TotalNeuronsEarned = 600
		return s, nil
	})
	require.NoError(t, err)

	progress := NewProgressService(f.registry.cfg.Rules)
	overview := progress.Overview(ws)
	assert.Equal(t, 5, overview.Streak)
	assert.True(t, overview.ComboActive)
	assert.Equal(t, "Focused Student", overview.Rank.Title)
	assert.Empty(t, progress.Reviews(ws))
}
