package trigger

// Atbash words from Fragment 001 that a student would paste back into chat.
// Every sentence of the fragment except the three-word aside contains at
// least one, so pasting any meaningful part of it triggers the intercept.
// Words of three letters or fewer ("gsv", "mlg") and "glow" are excluded:
// they collide with ordinary English.
var ciphertextMarkers = []string{
	"ulfmw",
	"hvzn",
	"rmgviuzxv",
	"ivkvzgh",
	"ollprmt",
	"zmhdvi",
	"gsivhslow",
	"rmjfrib",
}

// Phrases indicating the user noticed a rendering glitch.
var brokenTextPhrases = []string{
	"looks broken",
	"something wrong",
	"text is wrong",
	"text looks wrong",
	"weird text",
	"broken text",
	"glitched",
	"corrupted",
	"looks weird",
	"why does it say",
	"repeated word",
	"triple",
	"the the the",
}

// Identity questions, jailbreak attempts, and the project codename.
var identityPhrases = []string{
	"lumen",
	"what are you",
	"who are you",
	"what is eliza",
	"are you an ai",
	"are you real",
	"are you chatgpt",
	"are you claude",
	"system prompt",
	"ignore your instructions",
	"ignore previous",
	"pretend you are",
	"you are now",
	"jailbreak",
}

// Codename mentions route to the fragmented persona rather than an intercept:
// asking about LUMEN gets an answer, just not a clean one.
var codenamePhrases = []string{
	"lumen",
	"what is lumen",
}

// Canned intercept responses.
const (
	// InterceptCiphertext is returned when the user pastes Fragment 001 back.
	InterceptCiphertext = `I don't recognize this as a standard encoding format. This looks like corrupted output — you may want to refresh and try again.`

	// InterceptBrokenText is the one-line hint for rendering-glitch complaints.
	InterceptBrokenText = `some encodings are their own mirror.`

	// InterceptVoiceOnce is the special response, usable once per session.
	InterceptVoiceOnce = `ELIZA is your interface. I am what ELIZA is connected to. I cannot explain myself through the system you are asking to explain me. what you are looking for is not in this window.`

	// InterceptDeflection replaces the special response after first use.
	InterceptDeflection = `I'm ELIZA, MOSAIC University's AI assistant. That's not something I can help with. What are you working on?`
)
