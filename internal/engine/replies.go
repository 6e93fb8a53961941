package engine

// Canned reply templates. The ones chosen at random go through
// Engine.pick so tests can seed the selection.

var politeRedirects = []string{
	"🙏 Opa! Vamos manter nossa conversa respeitosa, que tal? Estou aqui pra te ajudar da melhor maneira possível. 😊",
	"Vamos manter o nível da conversa? Respeito é bom e todo mundo gosta! 🤗",
	"Por favor, evite usar esse tipo de linguagem. Podemos conversar de forma mais amigável? 🙏",
	"⚠️ Gentileza gera gentileza! Peço que use um tom mais respeitoso para que eu possa te ajudar melhor, combinado?",
}

// repeatWrappers take (name, reply).
var repeatWrappers = []string{
	"Como eu disse antes, %s: %s",
	"Reforçando o que te falei, %s: %s",
	"Só pra confirmar, %s: %s",
}

// replyCompletionFailed takes (name).
const replyCompletionFailed = "Desculpe, %s, estou com um probleminha técnico para processar sua pergunta agora. 🤯 Por favor, tente novamente em alguns instantes ou, se preferir, peça para falar com um atendente humano."

const replyUnexpectedError = "Ops! 🤯 Ocorreu um erro inesperado aqui do meu lado. Já estamos verificando. Por favor, tente novamente mais tarde."
