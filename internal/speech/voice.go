package speech

import (
	"bufio"
	"errors"
	"strings"
)

// ErrNoVoices is returned when the synthesizer reports no installed voices.
var ErrNoVoices = errors.New("no text-to-speech voices available")

// Voice is one entry from the synthesizer's voice list.
type Voice struct {
	Index    int
	ID       string
	Name     string
	Language string
}

// SelectVoice picks voices[index], falling back to the first voice when index
// is out of range.
func SelectVoice(voices []Voice, index int) (Voice, error) {
	if len(voices) == 0 {
		return Voice{}, ErrNoVoices
	}
	if index >= 0 && index < len(voices) {
		return voices[index], nil
	}
	return voices[0], nil
}

// parseVoiceList reads `espeak-ng --voices` output:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
func parseVoiceList(raw string) []Voice {
	var voices []Voice
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || strings.EqualFold(fields[0], "pty") {
			continue
		}
		voice := Voice{
			Index:    len(voices),
			ID:       fields[1],
			Language: fields[1],
			Name:     strings.ReplaceAll(fields[3], "_", " "),
		}
		voices = append(voices, voice)
	}
	return voices
}
