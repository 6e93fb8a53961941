package classify

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// Tables are the read-only lexical resources shared by all handlers. They
// are loaded once at startup and never mutated afterwards.
type Tables struct {
	// Profanity is a denylist of exact words/phrases, matched with word
	// boundaries on accent- and punctuation-stripped text.
	Profanity []string
	// Regionalisms maps slang to neutral Portuguese, used to normalize the
	// text fed into prompt building.
	Regionalisms map[string]string
}

func DefaultTables() Tables {
	return Tables{
		Profanity: []string{
			"besta", "idiota", "burro", "corno", "otario", "vagabundo", "merda", "porra", "caralho",
			"cacete", "desgraca", "nojento", "imbecil", "babaca", "panaca", "arrombado", "fdp",
			"filho da puta", "escroto", "miseravel", "cretino", "maldito", "diabo", "inferno",
			"vai se ferrar", "vai se foder", "foda-se", "puta", "piranha", "safado", "cu", "buceta",
			"boquete", "rola", "pau no cu", "tomar no cu", "cuzao", "chupa meu pau",
		},
		Regionalisms: map[string]string{
			"oxente": "nossa", "visse": "entendeu", "arretado": "muito bom", "cabra": "pessoa",
			"uai": "ué", "sô": "moço", "trem": "coisa",
			"bah": "nossa", "guria": "menina", "guri": "menino", "tri": "legal",
			"égua": "nossa", "mana": "irmã ou amiga",
			"vc": "você", "blz": "beleza", "pq": "porque", "tmj": "estamos juntos", "vlw": "valeu", "obg": "obrigado",
		},
	}
}

// LoadTables reads the optional data files under dataDir, falling back to
// the built-in defaults per file when a file is missing or unparseable.
func LoadTables(dataDir string) Tables {
	t := DefaultTables()

	var profanity []string
	if loadJSONFile(filepath.Join(dataDir, "palavras_proibidas.json"), &profanity) && len(profanity) > 0 {
		t.Profanity = profanity
	}
	var regionalisms map[string]string
	if loadJSONFile(filepath.Join(dataDir, "regionalismos.json"), &regionalisms) && len(regionalisms) > 0 {
		t.Regionalisms = regionalisms
	}
	return t
}

func loadJSONFile(path string, out any) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[classify] %s not found, using defaults", path)
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		log.Printf("[classify] failed to parse %s, using defaults: %v", path, err)
		return false
	}
	return true
}
