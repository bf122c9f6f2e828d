package registration

import "fmt"

// Choice is one selectable answer.
type Choice struct {
	Label       string
	Description string
	Value       int
}

// Prompt asks the owner to pick a player count for one game.
type Prompt struct {
	Tag         PromptTag
	Game        string
	Text        string
	Placeholder string
	Choices     []Choice
}

func choiceRange(from, to int) []Choice {
	choices := make([]Choice, 0, to-from+1)
	for v := from; v <= to; v++ {
		choices = append(choices, Choice{
			Label:       fmt.Sprintf("%d명", v),
			Description: fmt.Sprintf("%d명의 플레이어", v),
			Value:       v,
		})
	}
	return choices
}

// minPrompt offers 2..10 for the game at the cursor.
func minPrompt(s *Session) Prompt {
	game, _ := s.Current()
	return Prompt{
		Tag:         PromptTag{Kind: AwaitingMin, SessionID: s.ID, Index: s.Cursor},
		Game:        game,
		Text:        fmt.Sprintf("🎮 [%s] 게임의 **최소 인원**을 선택해주세요.", game),
		Placeholder: fmt.Sprintf("[%s] 최소 인원을 선택하세요", game),
		Choices:     choiceRange(MinPlayers, MaxPlayers),
	}
}

// maxPrompt offers chosenMin..10; a minimum of 10 leaves exactly one choice.
func maxPrompt(s *Session, chosenMin int) Prompt {
	game, _ := s.Current()
	return Prompt{
		Tag:         PromptTag{Kind: AwaitingMax, SessionID: s.ID, Index: s.Cursor},
		Game:        game,
		Text:        fmt.Sprintf("🎮 [%s]의 **최대 인원**을 선택해주세요.", game),
		Placeholder: fmt.Sprintf("[%s] 최대 인원을 선택하세요", game),
		Choices:     choiceRange(chosenMin, MaxPlayers),
	}
}

// PromptFor rebuilds the prompt a session is currently waiting on.
func PromptFor(s *Session) (Prompt, bool) {
	if s == nil || s.Done() {
		return Prompt{}, false
	}
	if s.Expected == AwaitingMax && s.PendingMin != nil {
		return maxPrompt(s, *s.PendingMin), true
	}
	return minPrompt(s), true
}
