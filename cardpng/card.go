package cardpng

import (
	"encoding/json"
	"errors"

	cerrors "github.com/flaneur2020/card-png/cardpng/errors"
)

// Card is a decoded character card. V3 ("chara_card_v3") and V2
// ("chara_card_v2") cards keep their fields under data; V1 cards are flat and
// get lifted into Data by ParseCard.
type Card struct {
	Spec        string   `json:"spec"`
	SpecVersion string   `json:"spec_version"`
	Data        CardData `json:"data"`

	// Keyword is the tEXt keyword the card was read from.
	Keyword string `json:"-"`
	// Raw is the payload exactly as embedded.
	Raw json.RawMessage `json:"-"`
}

// CardData holds the fields shared by every card version.
type CardData struct {
	Name                    string                     `json:"name"`
	Description             string                     `json:"description"`
	Personality             string                     `json:"personality"`
	Scenario                string                     `json:"scenario"`
	FirstMes                string                     `json:"first_mes"`
	MesExample              string                     `json:"mes_example"`
	CreatorNotes            string                     `json:"creator_notes"`
	SystemPrompt            string                     `json:"system_prompt"`
	PostHistoryInstructions string                     `json:"post_history_instructions"`
	AlternateGreetings      []string                   `json:"alternate_greetings"`
	Tags                    []string                   `json:"tags"`
	Creator                 string                     `json:"creator"`
	CharacterVersion        string                     `json:"character_version"`
	CharacterBook           json.RawMessage            `json:"character_book,omitempty"`
	Extensions              map[string]json.RawMessage `json:"extensions,omitempty"`
}

// CardSummary is the short description printed by "cardpng info".
type CardSummary struct {
	Keyword            string   `json:"keyword"`
	Spec               string   `json:"spec"`
	SpecVersion        string   `json:"spec_version"`
	Name               string   `json:"name"`
	Creator            string   `json:"creator,omitempty"`
	CharacterVersion   string   `json:"character_version,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	DescriptionLength  int      `json:"description_length"`
	FirstMesLength     int      `json:"first_mes_length"`
	AlternateGreetings int      `json:"alternate_greetings"`
	HasCharacterBook   bool     `json:"has_character_book"`
}

// ParseCard decodes a card JSON document.
func ParseCard(payload []byte) (*Card, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, cerrors.NewCardParseError("", err)
	}
	if probe == nil {
		return nil, cerrors.NewCardParseError("", errors.New("card document is null"))
	}

	var card Card
	if err := json.Unmarshal(payload, &card); err != nil {
		return nil, cerrors.NewCardParseError("", err)
	}
	if _, nested := probe["data"]; !nested {
		// V1: the card fields live at the top level.
		if err := json.Unmarshal(payload, &card.Data); err != nil {
			return nil, cerrors.NewCardParseError("", err)
		}
		if card.SpecVersion == "" {
			card.SpecVersion = "1.0"
		}
	}
	card.Raw = append(json.RawMessage(nil), payload...)
	return &card, nil
}

// ExtractCard reads the card from stream, preferring the V3 "ccv3" chunk and
// falling back to the legacy "chara" chunk. It returns ErrCardNotFound when
// neither is present.
func ExtractCard(stream []byte) (*Card, error) {
	for _, keyword := range []string{KeywordV3, KeywordV2} {
		payload, found, err := ExtractKeyword(stream, keyword)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		card, err := ParseCard([]byte(payload))
		if err != nil {
			var cardErr *cerrors.CardError
			if errors.As(err, &cardErr) {
				return nil, cardErr.WithDetail("keyword", keyword)
			}
			return nil, err
		}
		card.Keyword = keyword
		return card, nil
	}
	return nil, cerrors.NewCardNotFoundError("")
}

// Summary returns the key facts about the card.
func (c *Card) Summary() CardSummary {
	return CardSummary{
		Keyword:            c.Keyword,
		Spec:               c.Spec,
		SpecVersion:        c.SpecVersion,
		Name:               c.Data.Name,
		Creator:            c.Data.Creator,
		CharacterVersion:   c.Data.CharacterVersion,
		Tags:               c.Data.Tags,
		DescriptionLength:  len([]rune(c.Data.Description)),
		FirstMesLength:     len([]rune(c.Data.FirstMes)),
		AlternateGreetings: len(c.Data.AlternateGreetings),
		HasCharacterBook:   len(c.Data.CharacterBook) > 0 && string(c.Data.CharacterBook) != "null",
	}
}
