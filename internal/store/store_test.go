package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worksheetlab/worksheet-service/internal/models"
)

// runForBothBackends exercises the SessionStore contract against the
// memory backend and a miniredis-backed Redis backend.
func runForBothBackends(t *testing.T, test func(t *testing.T, s SessionStore)) {
	t.Run("memory", func(t *testing.T) {
		s := NewMemorySessionStore(time.Hour)
		defer s.Close()
		test(t, s)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, err := NewRedisSessionStore("redis://"+mr.Addr(), time.Hour)
		require.NoError(t, err)
		defer s.Close()
		test(t, s)
	})
}

func TestWorksheetRoundTrip(t *testing.T) {
	runForBothBackends(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()

		_, err := s.GetWorksheet(ctx, "s1")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.SaveWorksheet(ctx, "s1", models.DemoWorksheet()))

		got, err := s.GetWorksheet(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "Spanish Basics", got.Title)
		assert.Equal(t, 10, got.TotalQuestions())

		// Ordering and answer keys must survive storage.
		flat := got.AllQuestions()
		assert.Equal(t, "demo-q1", flat[0].ID)
		assert.Equal(t, "demo-q10", flat[9].ID)
		q7, ok := got.FindQuestion("demo-q7")
		require.True(t, ok)
		assert.Equal(t, models.AnswerKey{"soy", "Soy"}, q7.AnswerKey)
	})
}

func TestCurrentIndexDefaultsToZero(t *testing.T) {
	runForBothBackends(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()

		index, err := s.GetCurrentIndex(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 0, index)

		require.NoError(t, s.SaveCurrentIndex(ctx, "s1", 7))
		index, err = s.GetCurrentIndex(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 7, index)
	})
}

func TestStudentInfoRoundTrip(t *testing.T) {
	runForBothBackends(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()

		_, err := s.GetStudentInfo(ctx, "s1")
		assert.ErrorIs(t, err, ErrNotFound)

		info := &models.StudentInfo{Name: "Ana García", Timestamp: "Aug 25, 2026 9:15 AM"}
		require.NoError(t, s.SaveStudentInfo(ctx, "s1", info))

		got, err := s.GetStudentInfo(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "Ana García", got.Name)
		assert.Equal(t, "Aug 25, 2026 9:15 AM", got.Timestamp)
	})
}

func TestCompletedFlag(t *testing.T) {
	runForBothBackends(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()

		completed, err := s.IsCompleted(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, completed)

		require.NoError(t, s.MarkCompleted(ctx, "s1", true))
		completed, err = s.IsCompleted(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, completed)

		require.NoError(t, s.MarkCompleted(ctx, "s1", false))
		completed, err = s.IsCompleted(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, completed)
	})
}

func TestUpdateQuestionAnswer(t *testing.T) {
	runForBothBackends(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()
		require.NoError(t, s.SaveWorksheet(ctx, "s1", models.DemoWorksheet()))

		require.NoError(t, s.UpdateQuestionAnswer(ctx, "s1", "demo-q1", "b", true))

		got, err := s.GetWorksheet(ctx, "s1")
		require.NoError(t, err)
		q, ok := got.FindQuestion("demo-q1")
		require.True(t, ok)
		require.NotNil(t, q.Response)
		assert.Equal(t, "b", q.Response.Answer)
		assert.True(t, q.Response.IsCorrect)
		assert.Equal(t, 1, got.AnsweredQuestions())

		// Repeating the identical update changes nothing.
		require.NoError(t, s.UpdateQuestionAnswer(ctx, "s1", "demo-q1", "b", true))
		again, err := s.GetWorksheet(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, got.AllQuestions(), again.AllQuestions())

		// Resubmission overwrites the previous response.
		require.NoError(t, s.UpdateQuestionAnswer(ctx, "s1", "demo-q1", "a", false))
		got, err = s.GetWorksheet(ctx, "s1")
		require.NoError(t, err)
		q, _ = got.FindQuestion("demo-q1")
		assert.Equal(t, "a", q.Response.Answer)
		assert.False(t, q.Response.IsCorrect)
	})
}

func TestUpdateQuestionAnswerNoOps(t *testing.T) {
	runForBothBackends(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()

		// No worksheet loaded: silently ignored.
		require.NoError(t, s.UpdateQuestionAnswer(ctx, "s1", "demo-q1", "b", true))

		require.NoError(t, s.SaveWorksheet(ctx, "s1", models.DemoWorksheet()))

		// Unknown question id: silently ignored.
		require.NoError(t, s.UpdateQuestionAnswer(ctx, "s1", "no-such-id", "b", true))
		got, err := s.GetWorksheet(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 0, got.AnsweredQuestions())
	})
}

func TestClearRemovesEverything(t *testing.T) {
	runForBothBackends(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()

		require.NoError(t, s.SaveWorksheet(ctx, "s1", models.DemoWorksheet()))
		require.NoError(t, s.SaveCurrentIndex(ctx, "s1", 4))
		require.NoError(t, s.SaveStudentInfo(ctx, "s1", models.NewStudentInfo("Ana")))
		require.NoError(t, s.MarkCompleted(ctx, "s1", true))

		require.NoError(t, s.Clear(ctx, "s1"))

		_, err := s.GetWorksheet(ctx, "s1")
		assert.ErrorIs(t, err, ErrNotFound)
		index, err := s.GetCurrentIndex(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 0, index)
		_, err = s.GetStudentInfo(ctx, "s1")
		assert.ErrorIs(t, err, ErrNotFound)
		completed, err := s.IsCompleted(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, completed)
	})
}

func TestSessionsAreIsolated(t *testing.T) {
	runForBothBackends(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()

		require.NoError(t, s.SaveWorksheet(ctx, "s1", models.DemoWorksheet()))
		require.NoError(t, s.SaveCurrentIndex(ctx, "s1", 9))

		_, err := s.GetWorksheet(ctx, "s2")
		assert.ErrorIs(t, err, ErrNotFound)
		index, err := s.GetCurrentIndex(ctx, "s2")
		require.NoError(t, err)
		assert.Equal(t, 0, index)

		require.NoError(t, s.Clear(ctx, "s2"))
		_, err = s.GetWorksheet(ctx, "s1")
		assert.NoError(t, err, "clearing one session must not touch another")
	})
}

func TestSaveWorksheetDoesNotAliasCallerValue(t *testing.T) {
	runForBothBackends(t, func(t *testing.T, s SessionStore) {
		ctx := context.Background()

		w := models.DemoWorksheet()
		require.NoError(t, s.SaveWorksheet(ctx, "s1", w))

		// Mutating the caller's copy after saving must not leak in.
		w.Sections[0].Questions[0].Response = &models.Response{Answer: "b", IsCorrect: true}

		got, err := s.GetWorksheet(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 0, got.AnsweredQuestions())
	})
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemorySessionStore(time.Minute)
	base := time.Now()
	s.now = func() time.Time { return base }

	ctx := context.Background()
	require.NoError(t, s.SaveWorksheet(ctx, "s1", models.DemoWorksheet()))

	s.now = func() time.Time { return base.Add(30 * time.Second) }
	_, err := s.GetWorksheet(ctx, "s1")
	assert.NoError(t, err)

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = s.GetWorksheet(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	completed, err := s.IsCompleted(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, completed)
}

func TestRedisStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisSessionStore("redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.SaveWorksheet(ctx, "s1", models.DemoWorksheet()))
	require.NoError(t, s.MarkCompleted(ctx, "s1", true))

	mr.FastForward(2 * time.Minute)

	_, err = s.GetWorksheet(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
	completed, err := s.IsCompleted(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, completed)
}

func TestRedisStoreWritesRefreshWholeSession(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisSessionStore("redis://"+mr.Addr(), time.Minute)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.SaveWorksheet(ctx, "s1", models.DemoWorksheet()))

	// Half the TTL later, an index write must extend the worksheet too.
	mr.FastForward(30 * time.Second)
	require.NoError(t, s.SaveCurrentIndex(ctx, "s1", 1))

	mr.FastForward(45 * time.Second)
	_, err = s.GetWorksheet(ctx, "s1")
	assert.NoError(t, err, "activity on one slot should keep the whole session alive")
}

func TestNewRedisSessionStoreBadURL(t *testing.T) {
	_, err := NewRedisSessionStore("not-a-url", time.Minute)
	assert.Error(t, err)
}
