package translation

// Frequent-word lists per language. These are deliberately small: they only
// need to separate the supported languages on short chat messages, the
// statistical detector carries the long tail.
var frequentWords = map[string][]string{
	"en": {
		"the", "a", "an", "is", "are", "was", "were", "be", "to", "of", "and",
		"in", "on", "for", "with", "you", "your", "this", "that", "it", "not",
		"have", "has", "what", "how", "can", "will", "would", "please", "thanks",
		"thank", "hello", "world", "help", "need", "want", "like", "good", "great",
	},
	"es": {
		"el", "la", "los", "las", "un", "una", "es", "son", "está", "están",
		"de", "del", "en", "por", "para", "con", "que", "como", "pero", "muy",
		"hola", "gracias", "favor", "bueno", "bien", "ayuda", "necesito",
		"quiero", "tengo", "hay", "este", "esta", "todo", "más",
	},
	"fr": {
		"le", "la", "les", "un", "une", "des", "est", "sont", "de", "du",
		"en", "dans", "pour", "avec", "que", "qui", "mais", "très", "bonjour",
		"merci", "oui", "non", "je", "tu", "vous", "nous", "avoir", "être",
		"aide", "besoin", "bien", "tout", "plus", "cette",
	},
	"de": {
		"der", "die", "das", "ein", "eine", "ist", "sind", "war", "und",
		"in", "auf", "für", "mit", "von", "zu", "nicht", "ich", "du", "sie",
		"wir", "hallo", "danke", "bitte", "gut", "sehr", "auch", "aber",
		"haben", "sein", "kann", "hilfe", "brauche", "mehr",
	},
	"it": {
		"il", "lo", "la", "gli", "le", "un", "una", "è", "sono", "di",
		"in", "per", "con", "che", "come", "ma", "molto", "ciao", "grazie",
		"prego", "bene", "buono", "aiuto", "ho", "sei", "siamo", "questo",
		"questa", "tutto", "più", "anche", "non",
	},
	"pt": {
		"o", "a", "os", "as", "um", "uma", "é", "são", "de", "do", "da",
		"em", "para", "com", "que", "como", "mas", "muito", "olá", "obrigado",
		"obrigada", "bom", "bem", "ajuda", "preciso", "quero", "tenho",
		"este", "esta", "tudo", "mais", "não", "você",
	},
	"ru": {
		"и", "в", "не", "на", "я", "что", "это", "он", "она", "мы", "вы",
		"как", "но", "по", "из", "за", "привет", "спасибо", "пожалуйста",
		"да", "нет", "хорошо", "помощь", "нужно", "хочу", "есть", "был",
	},
	"ja": {
		"です", "ます", "した", "ない", "ある", "いる", "この", "その", "は",
		"が", "を", "に", "で", "と", "も", "から", "まで", "こんにちは",
		"ありがとう", "お願い", "はい", "いいえ",
	},
	"ko": {
		"이", "그", "저", "은", "는", "을", "를", "에", "에서", "와", "과",
		"하다", "있다", "없다", "안녕하세요", "감사합니다", "네", "아니요",
		"좋아요", "도움",
	},
	"zh": {
		"的", "是", "不", "我", "你", "他", "她", "们", "这", "那", "在",
		"有", "和", "了", "吗", "什么", "怎么", "你好", "谢谢", "请", "帮助",
		"需要", "可以",
	},
	"ar": {
		"في", "من", "على", "إلى", "هذا", "هذه", "أن", "لا", "نعم", "ما",
		"هو", "هي", "أنا", "أنت", "نحن", "مرحبا", "شكرا", "فضلك",
		"مساعدة", "أريد", "كيف",
	},
	"hi": {
		"है", "हैं", "का", "की", "के", "में", "से", "को", "और", "यह",
		"वह", "मैं", "आप", "हम", "नहीं", "हाँ", "नमस्ते", "धन्यवाद",
		"कृपया", "मदद", "चाहिए", "क्या", "कैसे",
	},
}

// Romanized Hindi markers: Hindi written in Latin script. A hit rate on this
// list well above the English score flags the text as romanized Hindi.
var romanizedHindiWords = []string{
	"hai", "hain", "nahi", "nahin", "kaise", "kaisa", "kaisi", "muje", "mujhe",
	"mujhko", "aap", "aapki", "aapka", "aapko", "tum", "tumhara", "tumhari",
	"mera", "meri", "mere", "tera", "teri", "apna", "apni", "kya", "kyun",
	"kyunki", "kab", "kahan", "kaun", "chahiye", "karna", "karo", "kiya",
	"raha", "rahi", "rahe", "hoon", "hun", "tha", "thi", "the", "acha",
	"accha", "theek", "thik", "bahut", "bohot", "yaar", "bhai", "matlab",
	"samajh", "batao", "bolo", "dekho", "suno", "haan", "ji", "namaste",
	"shukriya", "dhanyavad", "krupya", "madad", "zaroorat", "jarurat",
}

// Orthographic patterns that are strong hints for a language when the text
// is written in Latin script.
var languagePatterns = map[string][]string{
	"es": {`ción\b`, `¿`, `¡`, `\bñ`, `ñ`, `dad\b`, `mente\b`},
	"fr": {`eau\b`, `aux\b`, `\bqu'`, `\bc'est\b`, `\bj'`, `oi[sxt]\b`, `ç`},
	"de": {`sch`, `\bge[a-z]+t\b`, `ung\b`, `keit\b`, `lich\b`, `ß`},
	"it": {`zione\b`, `\bgli\b`, `\bche\b`, `tt[aoei]\b`, `ss[aoei]\b`},
	"pt": {`ção\b`, `ão\b`, `\blh`, `nh[ao]\b`, `dade\b`},
	"en": {`\bth`, `ing\b`, `tion\b`, `\bwh`, `ough`},
}

// Accented Latin characters distribute smaller bonuses to the Romance
// languages; umlauts and eszett point at German.
var accentBonuses = map[rune][]string{
	'á': {"es", "pt"}, 'é': {"es", "fr", "pt"}, 'í': {"es", "pt"},
	'ó': {"es", "pt"}, 'ú': {"es", "pt"}, 'ñ': {"es"},
	'à': {"fr", "it", "pt"}, 'è': {"fr", "it"}, 'ê': {"fr", "pt"},
	'ù': {"fr", "it"}, 'ô': {"fr"}, 'î': {"fr"}, 'ç': {"fr", "pt"},
	'ì': {"it"}, 'ò': {"it"},
	'ã': {"pt"}, 'õ': {"pt"},
	'ä': {"de"}, 'ö': {"de"}, 'ü': {"de"}, 'ß': {"de"},
}
