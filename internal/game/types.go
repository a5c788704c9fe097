// internal/game/types.go
//
// Core type definitions for the trivia game engine.
// Defines:
//   - State: the session lifecycle phase.
//   - Choice: one entry of a question's option set.
//   - Score, PlayedRecord: running tally and append-only play log.
//   - Verdict, CountryFacts: the Answer Verifier's results.
//   - Snapshot: the observable, serialisable copy of a Session.

package game

// State is the session lifecycle phase.
type State string

const (
	StateNotStarted     State = "not_started"
	StateAwaitingAnswer State = "awaiting_answer" // clue + options shown, no selection yet
	StateResolved       State = "resolved"        // answer verified, result shown
	StateCompleted      State = "completed"       // no eligible clue remains
)

// DefaultOptionCount is the number of choices offered per question.
const DefaultOptionCount = 4

// Choice is a candidate country shown for a question.
type Choice struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Score is the cumulative tally of a session.
type Score struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// PlayedRecord is appended once per resolved question and never mutated.
type PlayedRecord struct {
	CountryID  int64 `json:"countryId"`
	WasCorrect bool  `json:"wasCorrect"`
}

// Verdict is the outcome of verifying one answer.
type Verdict struct {
	Correct     bool   `json:"isCorrect"`
	CountryID   int64  `json:"correctCountryId"`
	CountryName string `json:"correctCountryName"`
	Fact        string `json:"factToShow"`
}

// CountryFacts is a country's fact pool with one fact drawn from it.
type CountryFacts struct {
	CountryID   int64    `json:"countryId"`
	CountryName string   `json:"countryName"`
	Facts       []string `json:"facts"`
	RandomFact  *string  `json:"randomFact"`
}

// Snapshot holds every observable field of a Session.
// Nullable fields are pointers: nil means "not set for the current question".
type Snapshot struct {
	ID               string         `json:"id"`
	State            State          `json:"state"`
	IsGameStarted    bool           `json:"isGameStarted"`
	IsGameCompleted  bool           `json:"isGameCompleted"`
	CurrentClueID    int64          `json:"currentClueId,omitempty"`
	CurrentClue      string         `json:"currentClue"`
	CorrectCountryID *int64         `json:"correctCountryId"`
	Options          []Choice       `json:"options"`
	SelectedOption   *int64         `json:"selectedOption"`
	IsCorrect        *bool          `json:"isCorrect"`
	FactToShow       string         `json:"factToShow"`
	Score            Score          `json:"score"`
	PlayedCountries  []PlayedRecord `json:"playedCountries"`
}

// PlayedIDs returns the played country ids in play order.
func (s Snapshot) PlayedIDs() []int64 {
	out := make([]int64, len(s.PlayedCountries))
	for i, p := range s.PlayedCountries {
		out[i] = p.CountryID
	}
	return out
}

// hasPlayed reports whether countryID is already in the play log.
func (s Snapshot) hasPlayed(countryID int64) bool {
	for _, p := range s.PlayedCountries {
		if p.CountryID == countryID {
			return true
		}
	}
	return false
}

// clone deep-copies the slices and pointers so the copy can be mutated freely.
func (s Snapshot) clone() Snapshot {
	out := s
	out.Options = append([]Choice{}, s.Options...)
	out.PlayedCountries = append([]PlayedRecord{}, s.PlayedCountries...)
	if s.CorrectCountryID != nil {
		v := *s.CorrectCountryID
		out.CorrectCountryID = &v
	}
	if s.SelectedOption != nil {
		v := *s.SelectedOption
		out.SelectedOption = &v
	}
	if s.IsCorrect != nil {
		v := *s.IsCorrect
		out.IsCorrect = &v
	}
	return out
}

// clearQuestion drops the current clue, options and result.
func (s *Snapshot) clearQuestion() {
	s.CurrentClueID = 0
	s.CurrentClue = ""
	s.CorrectCountryID = nil
	s.Options = []Choice{}
	s.clearResult()
}

// clearResult drops the selection and verification result only.
func (s *Snapshot) clearResult() {
	s.SelectedOption = nil
	s.IsCorrect = nil
	s.FactToShow = ""
}
