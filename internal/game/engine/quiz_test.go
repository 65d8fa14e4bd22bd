package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spillrom/spillrom/internal/game/room"
)

func startQuiz(t *testing.T, playerIDs ...string) (*Engine, *room.Room) {
	t.Helper()
	e, reg := newTestEngine(t)
	r := newTestRoom(t, reg, "quiz", playerIDs...)
	require.NotNil(t, e.HandleHostAction("host", "start-game", nil))
	return e, r
}

func TestQuiz_FreeTextScoring(t *testing.T) {
	e, r := startQuiz(t, "p1", "p2", "p3")
	require.NotNil(t, e.HandleHostAction("host", "show-question", map[string]any{
		"question": "Hva er hovedstaden i Frankrike?",
		"answers":  []any{"Paris"},
	}))

	e.HandlePlayerAction("p1", "answer", map[string]any{"answer": "paris"})
	e.HandlePlayerAction("p2", "answer", map[string]any{"answer": "pariis"})
	e.HandlePlayerAction("p3", "answer", map[string]any{"answer": "London"})

	eff := e.HandleHostAction("host", "reveal-answer", nil)
	require.NotNil(t, eff)
	assert.Equal(t, "answer-revealed", eff.Event)

	p1, _ := r.Player("p1")
	p2, _ := r.Player("p2")
	p3, _ := r.Player("p3")
	assert.Equal(t, pointsPerCorrectAnswer, p1.Score)
	assert.Equal(t, pointsPerCorrectAnswer, p2.Score, "one-letter typo is graded fuzzily")
	assert.Equal(t, 0, p3.Score)
}

func TestQuiz_MultipleChoiceIsExact(t *testing.T) {
	e, r := startQuiz(t, "p1", "p2")
	require.NotNil(t, e.HandleHostAction("host", "show-question", map[string]any{
		"question": "Hvilken er størst?",
		"choices":  []any{"Glomma", "Tana", "Numedalslågen"},
		"answers":  []any{"Glomma"},
	}))

	e.HandlePlayerAction("p1", "answer", map[string]any{"answer": "Glomma"})
	e.HandlePlayerAction("p2", "answer", map[string]any{"answer": "Glomm"})

	require.NotNil(t, e.HandleHostAction("host", "reveal-answer", nil))

	p1, _ := r.Player("p1")
	p2, _ := r.Player("p2")
	assert.Equal(t, pointsPerCorrectAnswer, p1.Score)
	assert.Equal(t, 0, p2.Score, "multiple choice gives no typo leniency")
}

func TestQuiz_ScoresAccumulateAcrossQuestions(t *testing.T) {
	e, r := startQuiz(t, "p1")

	for _, q := range []string{"Første?", "Andre?"} {
		require.NotNil(t, e.HandleHostAction("host", "show-question", map[string]any{
			"question": q,
			"answers":  []any{"riktig"},
		}))
		e.HandlePlayerAction("p1", "answer", map[string]any{"answer": "riktig"})
		require.NotNil(t, e.HandleHostAction("host", "reveal-answer", nil))
	}

	p1, _ := r.Player("p1")
	assert.Equal(t, 2*pointsPerCorrectAnswer, p1.Score)

	d := r.GameData.(*QuizData)
	assert.Equal(t, 2, d.QuestionIndex)
}

func TestQuiz_AnswerOnce(t *testing.T) {
	e, r := startQuiz(t, "p1")
	require.NotNil(t, e.HandleHostAction("host", "show-question", map[string]any{
		"question": "Spørsmål?", "answers": []any{"svar"},
	}))

	require.NotNil(t, e.HandlePlayerAction("p1", "answer", map[string]any{"answer": "første"}))
	assert.Nil(t, e.HandlePlayerAction("p1", "answer", map[string]any{"answer": "andre"}))

	d := r.GameData.(*QuizData)
	assert.Equal(t, "første", d.answers["p1"].Text)
}

func TestQuiz_ShowQuestionRequiresAnswers(t *testing.T) {
	e, _ := startQuiz(t, "p1")
	assert.Nil(t, e.HandleHostAction("host", "show-question", map[string]any{
		"question": "Uten fasit?",
	}))
}

func TestQuiz_RevealRequiresQuestion(t *testing.T) {
	e, _ := startQuiz(t, "p1")
	assert.Nil(t, e.HandleHostAction("host", "reveal-answer", nil))
}

func TestQuiz_CountdownIsDataOnly(t *testing.T) {
	e, _ := startQuiz(t, "p1")
	eff := e.HandleHostAction("host", "show-question", map[string]any{
		"question":  "Spørsmål?",
		"answers":   []any{"svar"},
		"countdown": float64(20),
	})
	require.NotNil(t, eff)
	assert.Equal(t, 20, eff.Payload["countdown"])
}
