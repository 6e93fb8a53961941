package classify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"popbot-backend/internal/session"
)

func newTestClassifier() *Classifier {
	return New(DefaultTables())
}

func TestFindProfanity(t *testing.T) {
	c := newTestClassifier()
	tests := []struct {
		text string
		term string
		want bool
	}{
		{"vc é um idiota", "idiota", true},
		{"Você é um IDIOTA!", "idiota", true},
		{"seu otário", "otario", true}, // accent-stripped before matching
		{"Filho da Puta", "filho da puta", true},
		{"que idiotice", "", false}, // no partial-word matches
		{"com cuidado", "", false},
		{"quanto custa o leite?", "", false},
	}
	for _, tt := range tests {
		term, ok := c.FindProfanity(tt.text)
		if ok != tt.want {
			t.Errorf("FindProfanity(%q): got match=%v, want %v", tt.text, ok, tt.want)
			continue
		}
		if ok && term != tt.term {
			t.Errorf("FindProfanity(%q): got term %q, want %q", tt.text, term, tt.term)
		}
	}
}

func TestClassifyHandoffRequest(t *testing.T) {
	c := newTestClassifier()
	for _, text := range []string{
		"quero falar com atendente",
		"tem algum humano aí?",
		"me passa pro suporte",
	} {
		res := c.Classify(Input{Text: text, State: session.StateIdle})
		if res.Intent != IntentRequestHandoff {
			t.Errorf("%q: got %s, want %s", text, res.Intent, IntentRequestHandoff)
		}
	}
}

func TestClassifyHandoffNegationSuppressed(t *testing.T) {
	c := newTestClassifier()
	res := c.Classify(Input{Text: "não quero falar com atendente", State: session.StateIdle})
	if res.Intent != IntentGeneralQuery {
		t.Fatalf("negated handoff request: got %s, want %s", res.Intent, IntentGeneralQuery)
	}
}

func TestClassifyConfirmationReplies(t *testing.T) {
	c := newTestClassifier()
	tests := []struct {
		text string
		want Intent
	}{
		{"sim", IntentConfirmHandoff},
		{"pode chamar", IntentConfirmHandoff},
		{"confirmo", IntentConfirmHandoff},
		{"não", IntentDeclineHandoff},
		{"nao, deixa pra lá", IntentDeclineHandoff},
		// Decline wins over the confirm keyword inside the negation.
		{"não quero", IntentDeclineHandoff},
		{"talvez amanhã", IntentGeneralQuery},
	}
	for _, tt := range tests {
		res := c.Classify(Input{Text: tt.text, State: session.StateAwaitingConfirmation})
		if res.Intent != tt.want {
			t.Errorf("%q: got %s, want %s", tt.text, res.Intent, tt.want)
		}
	}
}

func TestConfirmRequiresAwaitingState(t *testing.T) {
	c := newTestClassifier()
	res := c.Classify(Input{Text: "sim", State: session.StateIdle})
	if res.Intent == IntentConfirmHandoff || res.Intent == IntentDeclineHandoff {
		t.Fatalf("confirmation intent outside AWAITING_HUMAN_CONFIRMATION: %s", res.Intent)
	}
}

func TestClassifyProvideName(t *testing.T) {
	c := newTestClassifier()
	res := c.Classify(Input{Text: "meu nome é joão", State: session.StateIdle})
	if res.Intent != IntentProvideName || res.Name != "João" {
		t.Fatalf("got intent=%s name=%q, want %s/João", res.Intent, res.Name, IntentProvideName)
	}

	// Once a name is known, the same phrase is just conversation.
	res = c.Classify(Input{Text: "meu nome é joão", State: session.StateIdle, HasName: true})
	if res.Intent != IntentGeneralQuery {
		t.Fatalf("with HasName: got %s, want %s", res.Intent, IntentGeneralQuery)
	}
}

func TestClassifyProfanity(t *testing.T) {
	c := newTestClassifier()
	res := c.Classify(Input{Text: "vc é um idiota", State: session.StateIdle, HasName: true})
	if res.Intent != IntentProfanity || res.Term != "idiota" {
		t.Fatalf("got intent=%s term=%q, want %s/idiota", res.Intent, res.Term, IntentProfanity)
	}
}

func TestClassifyDefaultsToGeneralQuery(t *testing.T) {
	c := newTestClassifier()
	res := c.Classify(Input{Text: "qual o horário de funcionamento?", State: session.StateIdle, HasName: true})
	if res.Intent != IntentGeneralQuery {
		t.Fatalf("got %s, want %s", res.Intent, IntentGeneralQuery)
	}
}

func TestIdentifyRegion(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"oxente, tem oferta hoje?", "Nordeste"},
		{"uai, cadê o pão de queijo", "Minas Gerais"},
		{"bah, tri caro isso", "Sul"},
		{"égua, maninho!", "Norte"},
		{"bom dia, tudo bem?", "Brasil"},
	}
	for _, tt := range tests {
		if got := IdentifyRegion(tt.text); got != tt.want {
			t.Errorf("IdentifyRegion(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestNormalizeRegional(t *testing.T) {
	c := newTestClassifier()
	tests := []struct {
		in, want string
	}{
		{"vc tem blz?", "você tem beleza?"},
		{"vc vc", "você você"}, // consecutive tokens both replaced
		{"Oxente, que trem!", "nossa, que coisa!"},
		{"obrigado pela atenção", "obrigado pela atenção"},
	}
	for _, tt := range tests {
		if got := c.NormalizeRegional(tt.in); got != tt.want {
			t.Errorf("NormalizeRegional(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripAccentsAndPunct(t *testing.T) {
	if got := StripAccentsAndPunct("Olá, você! Está?"); got != "ola voce esta" {
		t.Fatalf("got %q", got)
	}
}

func TestCapitalize(t *testing.T) {
	if got := Capitalize("joão"); got != "João" {
		t.Fatalf("got %q", got)
	}
	if got := Capitalize(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadTablesOverridesFromFiles(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "palavras_proibidas.json"), []string{"zorra"})
	writeJSON(t, filepath.Join(dir, "regionalismos.json"), map[string]string{"massa": "legal"})

	tables := LoadTables(dir)
	if len(tables.Profanity) != 1 || tables.Profanity[0] != "zorra" {
		t.Errorf("profanity override not applied: %v", tables.Profanity)
	}
	if tables.Regionalisms["massa"] != "legal" {
		t.Errorf("regionalism override not applied: %v", tables.Regionalisms)
	}
}

func TestLoadTablesFallsBackPerFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "palavras_proibidas.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	tables := LoadTables(dir)
	defaults := DefaultTables()
	if len(tables.Profanity) != len(defaults.Profanity) {
		t.Errorf("expected default profanity list, got %d entries", len(tables.Profanity))
	}
	if len(tables.Regionalisms) != len(defaults.Regionalisms) {
		t.Errorf("expected default regionalisms, got %d entries", len(tables.Regionalisms))
	}
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
}
