package engine

import (
	"strings"

	"github.com/spillrom/spillrom/internal/game/room"
)

// JaEllerNei is the elimination game: the host shows yes/no questions,
// every player answers once, and a wrong answer at reveal eliminates
// the player.
type JaEllerNei struct{}

// JaEllerNeiData is the game-data variant for one ja-eller-nei session.
type JaEllerNeiData struct {
	QuestionIndex int               `json:"questionIndex"`
	Question      string            `json:"question"`
	CorrectAnswer string            `json:"-"`
	Revealed      bool              `json:"revealed"`
	Answers       map[string]string `json:"-"`
	Eliminated    []string          `json:"eliminated"`
}

func (JaEllerNei) Initialize(players []*room.Player, config map[string]any) any {
	return &JaEllerNeiData{Answers: make(map[string]string)}
}

func (g JaEllerNei) HandleHostAction(r *room.Room, action string, data map[string]any) *Effect {
	d, ok := r.GameData.(*JaEllerNeiData)
	if !ok {
		return nil
	}

	switch action {
	case "show-question":
		question, ok := getString(data, "question")
		if !ok || question == "" {
			return nil
		}
		correct, ok := getString(data, "answer")
		if !ok {
			return nil
		}
		correct = strings.ToLower(strings.TrimSpace(correct))
		if correct != "ja" && correct != "nei" {
			return nil
		}

		d.Question = question
		d.CorrectAnswer = correct
		d.Revealed = false
		d.Answers = make(map[string]string)
		d.Eliminated = nil

		return Broadcast("question-shown", map[string]any{
			"question": question,
			"index":    d.QuestionIndex,
		}).WithHost("answer-key", map[string]any{"answer": correct})

	case "reveal-answer":
		if d.Revealed || d.CorrectAnswer == "" {
			return nil
		}

		var eliminated []string
		for _, p := range r.Players {
			if p.IsEliminated {
				continue
			}
			if d.Answers[p.ID] != d.CorrectAnswer {
				p.IsEliminated = true
				eliminated = append(eliminated, p.ID)
			}
		}
		d.Eliminated = eliminated
		d.Revealed = true
		d.QuestionIndex++
		d.Answers = make(map[string]string)

		return Broadcast("answer-revealed", map[string]any{
			"correctAnswer": d.CorrectAnswer,
			"eliminated":    eliminated,
			"players":       r.Players,
		})
	}
	return nil
}

func (g JaEllerNei) HandlePlayerAction(r *room.Room, playerID, action string, data map[string]any) *Effect {
	if action != "answer" {
		return nil
	}
	d, ok := r.GameData.(*JaEllerNeiData)
	if !ok || d.Revealed || d.Question == "" {
		return nil
	}

	p, ok := r.Player(playerID)
	if !ok || p.IsEliminated {
		return nil
	}
	if _, answered := d.Answers[playerID]; answered {
		return nil
	}

	value, ok := getString(data, "answer")
	if !ok {
		return nil
	}
	value = strings.ToLower(strings.TrimSpace(value))
	if value != "ja" && value != "nei" {
		return nil
	}
	d.Answers[playerID] = value

	return Broadcast("player-answered", map[string]any{
		"playerId": playerID,
		"answered": len(d.Answers),
	}).WithPlayer("answer-received", map[string]any{"answer": value})
}
