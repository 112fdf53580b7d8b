package content

import "github.com/example/linguabot/pkg/models"

var builtinScenarios = []Scenario{
	{
		Key:     "restaurant",
		Title:   "At a Restaurant",
		Context: "You are a customer at a restaurant.",
		Prompts: []string{
			"Waiter: Welcome! Do you have a reservation?",
			"Waiter: What would you like to order?",
			"Waiter: How would you like your steak cooked?",
			"Waiter: Would you like dessert?",
			"Waiter: Here is your bill. That will be $25.",
		},
		Vocab: []string{"reservation", "menu", "order", "bill", "waiter", "chef", "appetizer", "dessert"},
	},
	{
		Key:     "airport",
		Title:   "At the Airport",
		Context: "You are checking in at the airport.",
		Prompts: []string{
			"Staff: Good morning! May I see your passport?",
			"Staff: How many bags are you checking in?",
			"Staff: Do you have any liquids in your carry-on?",
			"Staff: Your boarding gate is B12. Have a safe flight!",
		},
		Vocab: []string{"passport", "boarding pass", "gate", "departure", "carry-on", "check-in", "customs"},
	},
	{
		Key:     "job_interview",
		Title:   "Job Interview",
		Context: "You are being interviewed for a job.",
		Prompts: []string{
			"Interviewer: Tell me about yourself.",
			"Interviewer: Why do you want this position?",
			"Interviewer: What are your greatest strengths?",
			"Interviewer: Where do you see yourself in 5 years?",
			"Interviewer: Do you have any questions for us?",
		},
		Vocab: []string{"experience", "qualifications", "skills", "team player", "initiative", "responsibilities"},
	},
	{
		Key:     "hotel",
		Title:   "At the Hotel",
		Context: "You are checking in at a hotel.",
		Prompts: []string{
			"Receptionist: Good evening! Do you have a booking?",
			"Receptionist: How many nights will you be staying?",
			"Receptionist: Would you like a king or twin room?",
			"Receptionist: Breakfast is served from 7-10 AM.",
		},
		Vocab: []string{"reservation", "check-in", "check-out", "room service", "key card", "lobby", "concierge"},
	},
}

// Ordered from A1 to C2
var englishLevelTest = []models.Question{
	{Prompt: "What is the capital of England?", Options: []string{"Paris", "London", "Berlin", "Rome"}, CorrectIndex: 1},
	{Prompt: "She ___ to school every day.", Options: []string{"go", "goes", "going", "went"}, CorrectIndex: 1},
	{Prompt: "Choose the correct sentence:", Options: []string{"I am go school", "I go to school", "I going school", "I goes school"}, CorrectIndex: 1},
	{Prompt: "Which sentence uses Past Simple?", Options: []string{"I eat breakfast", "I will eat", "I ate breakfast", "I am eating"}, CorrectIndex: 2},
	{Prompt: "By the time she arrived, he ___ left.", Options: []string{"has", "had", "have", "will have"}, CorrectIndex: 1},
	{Prompt: "The report ___ submitted by Friday.", Options: []string{"must", "should be", "must be", "has"}, CorrectIndex: 2},
	{Prompt: "Hardly ___ he sat down when the phone rang.", Options: []string{"had", "did", "was", "has"}, CorrectIndex: 0},
	{Prompt: "The phenomenon ___ considerable debate.", Options: []string{"has elicit", "has elicited", "eliciting", "have elicited"}, CorrectIndex: 1},
}

var builtinLessons = []Lesson{
	{
		Key: "greetings", Language: "english", Level: "A1", Title: "Greetings",
		Body: "Hello / Hi / Good morning / Good evening / Goodbye / See you later",
		Quiz: []models.Question{
			{Prompt: "What do you say in the morning?", Options: []string{"Good night", "Good morning", "Goodbye", "See you"}, CorrectIndex: 1},
			{Prompt: "Which one is informal?", Options: []string{"Good evening", "How do you do", "Hi", "Good afternoon"}, CorrectIndex: 2},
			{Prompt: "What do you say when leaving?", Options: []string{"Hello", "Goodbye", "Welcome", "Thanks"}, CorrectIndex: 1},
		},
	},
	{
		Key: "colors", Language: "english", Level: "A1", Title: "Colors",
		Body: "red, blue, green, yellow, black, white",
		Quiz: []models.Question{
			{Prompt: "What color is the sky on a clear day?", Options: []string{"Green", "Red", "Blue", "Black"}, CorrectIndex: 2},
			{Prompt: "What color is grass?", Options: []string{"Green", "White", "Yellow", "Blue"}, CorrectIndex: 0},
			{Prompt: "What color is snow?", Options: []string{"Black", "White", "Red", "Brown"}, CorrectIndex: 1},
		},
	},
	{
		Key: "past_simple", Language: "english", Level: "A2", Title: "Past Simple",
		Body: "Regular verbs add -ed (worked, played); irregular verbs change form (go → went, eat → ate).",
		Quiz: []models.Question{
			{Prompt: "Yesterday I ___ to the park.", Options: []string{"go", "goes", "went", "going"}, CorrectIndex: 2},
			{Prompt: "She ___ a pizza last night.", Options: []string{"eat", "ate", "eaten", "eats"}, CorrectIndex: 1},
			{Prompt: "They ___ football on Sunday.", Options: []string{"played", "play", "playing", "plays"}, CorrectIndex: 0},
		},
	},
	{
		Key: "present_perfect", Language: "english", Level: "B1", Title: "Present Perfect",
		Body: "have/has + past participle for experiences and results: I have visited Paris.",
		Quiz: []models.Question{
			{Prompt: "I ___ never been to Japan.", Options: []string{"has", "have", "had", "am"}, CorrectIndex: 1},
			{Prompt: "She has ___ her homework.", Options: []string{"finish", "finishing", "finished", "finishes"}, CorrectIndex: 2},
			{Prompt: "___ you ever tried sushi?", Options: []string{"Did", "Have", "Are", "Do"}, CorrectIndex: 1},
		},
	},
}
