package translation

import (
	"context"
	"strings"
)

// PhraseTableTranslator is the deterministic offline fallback: a built-in
// lookup of common short phrases across the supported languages. It is used
// only when the adapter is configured offline or degraded mode is requested.
// On a table miss it returns the original text prefixed with the target
// language tag, which callers may treat as a failed translation.
type PhraseTableTranslator struct{}

func (PhraseTableTranslator) Translate(_ context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == targetLang || strings.TrimSpace(text) == "" {
		return text, nil
	}
	if row, ok := phraseTable[normalizeForKey(text)]; ok {
		if out, ok := row[NormalizeLanguage(targetLang)]; ok {
			return out, nil
		}
	}
	return "[" + targetLang + "] " + text, nil
}

// phraseTable maps normalized source phrases to per-language renderings.
var phraseTable = map[string]map[string]string{
	"hello": {
		"en": "hello", "es": "hola", "fr": "bonjour", "de": "hallo",
		"it": "ciao", "pt": "olá", "ru": "привет", "ja": "こんにちは",
		"ko": "안녕하세요", "zh": "你好", "ar": "مرحبا", "hi": "नमस्ते",
	},
	"hello world": {
		"en": "hello world", "es": "hola mundo", "fr": "bonjour le monde",
		"de": "hallo welt", "it": "ciao mondo", "pt": "olá mundo",
		"ru": "привет мир", "ja": "こんにちは世界", "ko": "안녕 세상",
		"zh": "你好世界", "ar": "مرحبا بالعالم", "hi": "नमस्ते दुनिया",
	},
	"thank you": {
		"en": "thank you", "es": "gracias", "fr": "merci", "de": "danke",
		"it": "grazie", "pt": "obrigado", "ru": "спасибо", "ja": "ありがとう",
		"ko": "감사합니다", "zh": "谢谢", "ar": "شكرا", "hi": "धन्यवाद",
	},
	"thanks": {
		"en": "thanks", "es": "gracias", "fr": "merci", "de": "danke",
		"it": "grazie", "pt": "obrigado", "ru": "спасибо", "ja": "ありがとう",
		"ko": "감사합니다", "zh": "谢谢", "ar": "شكرا", "hi": "धन्यवाद",
	},
	"good morning": {
		"en": "good morning", "es": "buenos días", "fr": "bonjour",
		"de": "guten morgen", "it": "buongiorno", "pt": "bom dia",
		"ru": "доброе утро", "ja": "おはようございます", "ko": "좋은 아침",
		"zh": "早上好", "ar": "صباح الخير", "hi": "सुप्रभात",
	},
	"good night": {
		"en": "good night", "es": "buenas noches", "fr": "bonne nuit",
		"de": "gute nacht", "it": "buonanotte", "pt": "boa noite",
		"ru": "спокойной ночи", "ja": "おやすみなさい", "ko": "잘 자요",
		"zh": "晚安", "ar": "تصبح على خير", "hi": "शुभ रात्रि",
	},
	"how are you": {
		"en": "how are you", "es": "¿cómo estás?", "fr": "comment ça va ?",
		"de": "wie geht es dir?", "it": "come stai?", "pt": "como você está?",
		"ru": "как дела?", "ja": "お元気ですか", "ko": "어떻게 지내세요?",
		"zh": "你好吗", "ar": "كيف حالك؟", "hi": "आप कैसे हैं?",
	},
	"yes": {
		"en": "yes", "es": "sí", "fr": "oui", "de": "ja", "it": "sì",
		"pt": "sim", "ru": "да", "ja": "はい", "ko": "네", "zh": "是",
		"ar": "نعم", "hi": "हाँ",
	},
	"no": {
		"en": "no", "es": "no", "fr": "non", "de": "nein", "it": "no",
		"pt": "não", "ru": "нет", "ja": "いいえ", "ko": "아니요", "zh": "不",
		"ar": "لا", "hi": "नहीं",
	},
	"please": {
		"en": "please", "es": "por favor", "fr": "s'il vous plaît",
		"de": "bitte", "it": "per favore", "pt": "por favor",
		"ru": "пожалуйста", "ja": "お願いします", "ko": "제발", "zh": "请",
		"ar": "من فضلك", "hi": "कृपया",
	},
	"goodbye": {
		"en": "goodbye", "es": "adiós", "fr": "au revoir",
		"de": "auf wiedersehen", "it": "arrivederci", "pt": "adeus",
		"ru": "до свидания", "ja": "さようなら", "ko": "안녕히 가세요",
		"zh": "再见", "ar": "وداعا", "hi": "अलविदा",
	},
	"welcome": {
		"en": "welcome", "es": "bienvenido", "fr": "bienvenue",
		"de": "willkommen", "it": "benvenuto", "pt": "bem-vindo",
		"ru": "добро пожаловать", "ja": "ようこそ", "ko": "환영합니다",
		"zh": "欢迎", "ar": "أهلا بك", "hi": "स्वागत है",
	},
	"i need help": {
		"en": "i need help", "es": "necesito ayuda", "fr": "j'ai besoin d'aide",
		"de": "ich brauche hilfe", "it": "ho bisogno di aiuto",
		"pt": "preciso de ajuda", "ru": "мне нужна помощь",
		"ja": "助けが必要です", "ko": "도움이 필요해요", "zh": "我需要帮助",
		"ar": "أحتاج مساعدة", "hi": "मुझे मदद चाहिए",
	},
}
