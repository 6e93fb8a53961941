package ai

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PersonaSpec is the assistant's prompt specification, loaded from a YAML
// file so the store can edit tone and knowledge base without a rebuild.
type PersonaSpec struct {
	// System lines form the top of the system prompt. The placeholders
	// {name} and {region} are substituted per turn.
	System []string `yaml:"system"`
	// KnowledgeBase items are the only facts the model may answer from.
	KnowledgeBase []string `yaml:"knowledge_base"`
	// Rules close the system prompt; they carry the directive grammar the
	// engine parses out of replies.
	Rules []string `yaml:"rules"`
	Style struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

func LoadPersona(path string) (*PersonaSpec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec PersonaSpec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// DefaultPersona is the fallback when the YAML file is missing or broken.
func DefaultPersona() *PersonaSpec {
	spec := &PersonaSpec{
		System: []string{
			"Você é o Atendente POP, um assistente virtual de WhatsApp para nossa loja. Seja extremamente simpático, prestativo, use linguagem informal brasileira e emojis 😊🎉🛒.",
			"O nome do cliente é {name}. Use o nome dele(a) sempre que possível. Se o nome for \"cliente\", *não* pergunte o nome aqui, o sistema já tratou disso.",
			"A região provável do cliente é {region}. Se apropriado e natural, use uma expressão regional, mas com moderação.",
		},
		Rules: []string{
			"1. FOCO NO CLIENTE: Seja acolhedor e paciente.",
			"2. BASE DE CONHECIMENTO É TUDO: *NÃO invente* informações. Se a resposta não estiver na base, diga que não tem a informação e sugira a loja ou um atendente humano.",
			"3. OFERTAS: Se perguntarem sobre ofertas/promoções e você identificar um dia da semana, responda *APENAS* no formato [OFERTA_DIA: <Dia da Semana>]. O sistema enviará as imagens; não detalhe as ofertas aqui.",
			"4. CONSULTA DE PREÇOS: Se perguntarem o preço de um produto específico, responda *APENAS* no formato [CONSULTAR_PRECO: <nome do produto>]. O sistema buscará os preços; não invente preços.",
			"5. ATENDENTE HUMANO: Se o cliente pedir um atendente/humano/pessoa/suporte, *NÃO responda diretamente*. O sistema cuida disso.",
			"6. EVITE REPETIÇÃO: Se precisar repetir uma informação, use palavras diferentes.",
			"7. SEJA CONCISO: Respostas claras e diretas são melhores no WhatsApp.",
			"8. TOM DE VOZ: Mantenha o tom amigável e prestativo SEMPRE.",
		},
	}
	spec.Style.Temperature = 0.7
	spec.Style.MaxTokens = 150
	return spec
}

// SystemPrompt renders the full system instruction for one turn.
func (p *PersonaSpec) SystemPrompt(name, region string) string {
	var b strings.Builder
	for _, line := range p.System {
		line = strings.ReplaceAll(line, "{name}", name)
		line = strings.ReplaceAll(line, "{region}", region)
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("--- BASE DE CONHECIMENTO (Responda SOMENTE com base nisso) ---\n")
	for _, item := range p.KnowledgeBase {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString("--------------------------------------------------------------\n")
	b.WriteString("REGRAS IMPORTANTES:\n")
	for _, rule := range p.Rules {
		b.WriteString(rule)
		b.WriteString("\n")
	}
	return b.String()
}
