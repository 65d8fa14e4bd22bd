package engine

import (
	"github.com/spillrom/spillrom/internal/game/answer"
	"github.com/spillrom/spillrom/internal/game/room"
)

// pointsPerCorrectAnswer is the flat score a correct quiz answer earns.
const pointsPerCorrectAnswer = 100

// Quiz is the score-accumulating question game. Questions are either
// multiple choice or free text; free-text answers are graded with the
// fuzzy matcher at reveal, so a typo does not cost the point.
type Quiz struct{}

type quizAnswer struct {
	Text  string
	Order int
}

// QuizData is the game-data variant for one quiz session.
type QuizData struct {
	QuestionIndex  int      `json:"questionIndex"`
	Question       string   `json:"question"`
	Choices        []string `json:"choices"`
	CorrectAnswers []string `json:"-"`
	Revealed       bool     `json:"revealed"`
	Countdown      int      `json:"countdown"`

	answers map[string]quizAnswer
}

func (Quiz) Initialize(players []*room.Player, config map[string]any) any {
	return &QuizData{answers: make(map[string]quizAnswer)}
}

func (g Quiz) HandleHostAction(r *room.Room, action string, data map[string]any) *Effect {
	d, ok := r.GameData.(*QuizData)
	if !ok {
		return nil
	}

	switch action {
	case "show-question":
		return g.showQuestion(d, data)
	case "reveal-answer":
		return g.revealAnswer(r, d)
	}
	return nil
}

func (g Quiz) showQuestion(d *QuizData, data map[string]any) *Effect {
	question, ok := getString(data, "question")
	if !ok || question == "" {
		return nil
	}
	accepted, ok := getStringSlice(data, "answers")
	if !ok || len(accepted) == 0 {
		return nil
	}
	choices, _ := getStringSlice(data, "choices")
	countdown, _ := getInt(data, "countdown")

	d.Question = question
	d.Choices = choices
	d.CorrectAnswers = accepted
	d.Revealed = false
	d.Countdown = countdown
	d.answers = make(map[string]quizAnswer)

	// The countdown is data for clients to render; the server keeps no
	// timer for it.
	return Broadcast("question-shown", map[string]any{
		"question":  question,
		"choices":   choices,
		"countdown": countdown,
		"index":     d.QuestionIndex,
	}).WithHost("answer-key", map[string]any{"answers": accepted})
}

func (g Quiz) revealAnswer(r *room.Room, d *QuizData) *Effect {
	if d.Revealed || len(d.CorrectAnswers) == 0 {
		return nil
	}

	// Multiple choice demands the exact option; free text is graded
	// fuzzily.
	opts := answer.Options{ExactMatch: len(d.Choices) > 0}

	results := make([]map[string]any, 0, len(d.answers))
	for _, p := range r.Players {
		a, answered := d.answers[p.ID]
		if !answered {
			continue
		}
		res := answer.Check(a.Text, d.CorrectAnswers, opts)
		if res.Correct {
			p.Score += pointsPerCorrectAnswer
		}
		results = append(results, map[string]any{
			"playerId": p.ID,
			"answer":   a.Text,
			"correct":  res.Correct,
		})
	}

	d.Revealed = true
	d.QuestionIndex++
	d.answers = make(map[string]quizAnswer)

	return Broadcast("answer-revealed", map[string]any{
		"correctAnswers": d.CorrectAnswers,
		"results":        results,
		"players":        r.Players,
	})
}

func (g Quiz) HandlePlayerAction(r *room.Room, playerID, action string, data map[string]any) *Effect {
	if action != "answer" {
		return nil
	}
	d, ok := r.GameData.(*QuizData)
	if !ok || d.Revealed || d.Question == "" {
		return nil
	}
	if _, answered := d.answers[playerID]; answered {
		return nil
	}

	text, ok := getString(data, "answer")
	if !ok || text == "" {
		return nil
	}
	d.answers[playerID] = quizAnswer{Text: text, Order: len(d.answers)}

	return Broadcast("player-answered", map[string]any{
		"playerId": playerID,
		"answered": len(d.answers),
	}).WithPlayer("answer-received", map[string]any{"answer": text})
}
