package dialogue

// Spoken response texts.
const (
	IntroText = "Hi, I'm Parley, your dictionary assistant. Say 'Hello' to start the dialogue."

	GreetingText = "Hi! I'll help you learn the meaning of new words." +
		" To get started, say 'find' and the word you're interested in."

	SaveHintText = `If you want to know more about this word, say "save".`

	SavedHelpText = "I remember your word, let's work with it. Here are the available commands:" +
		" 'meaning' - repeat the meaning of the word;" +
		" 'link' - open the link to the word in the browser;" +
		" 'example' - give an example of using the word." +
		" If you are no longer interested in this word, say 'forget' or ask about another word."

	OneSecondText = "One second."

	ForgetText = "I erased that word. If you want to know something else," +
		" say 'find' and the word you are interested in."

	UnmatchedText = "I couldn't understand you."

	LookupFailedText = "Something went wrong. Please try again."

	FarewellText = "Goodbye!"
)
