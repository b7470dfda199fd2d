package generator

// The question tables are content, not logic. Generation only ever takes a
// prefix of each table, so order matters.

var commonQuestions = []string{
	"Tell me about yourself and your background.",
	"What are your greatest strengths?",
	"What are your greatest weaknesses?",
	"Where do you see yourself in 5 years?",
	"Why do you want to work for this company?",
	"What motivates you?",
	"Describe a challenging situation you faced at work and how you handled it.",
	"What are your salary expectations?",
	"Do you have any questions for us?",
	"Why should we hire you?",
}

var technicalQuestions = []string{
	"Can you walk me through your technical background?",
	"What programming languages are you most comfortable with?",
	"Describe a technical problem you solved recently.",
	"How do you stay updated with the latest technology trends?",
	"What's your experience with version control systems?",
	"How do you approach debugging complex issues?",
	"What's your experience with agile development methodologies?",
	"How do you handle tight deadlines?",
	"What's your experience with testing and quality assurance?",
	"How do you collaborate with non-technical team members?",
}

var behavioralQuestions = []string{
	"Tell me about a time you had to work with a difficult team member.",
	"Describe a situation where you had to learn something quickly.",
	"Give me an example of when you showed leadership.",
	"Tell me about a time you failed and what you learned from it.",
	"Describe a situation where you had to make a decision without all the information.",
	"Tell me about a time you had to adapt to a significant change at work.",
	"Give me an example of when you had to persuade someone to see your point of view.",
	"Describe a time when you had to work under pressure.",
	"Tell me about a time you had to resolve a conflict.",
	"Give me an example of when you went above and beyond what was expected.",
}

// technicalKeywords mark a job title as technical (case-insensitive substring match).
var technicalKeywords = []string{
	"developer", "engineer", "programmer", "software", "web", "frontend", "backend",
	"fullstack", "devops", "data", "analyst", "architect", "qa", "test",
}

const (
	feedbackExcellent = "Excellent interview performance! You demonstrated strong communication skills and provided thoughtful, detailed responses."
	feedbackGood      = "Good interview performance. You answered most questions well, but could provide more detailed responses in some areas."
	feedbackFair      = "Fair interview performance. Consider practicing more detailed responses and preparing specific examples for common questions."
)

var suggestions = []string{
	"Practice answering common interview questions with specific examples from your experience",
	"Prepare stories that demonstrate your skills and achievements",
	"Research the company and role before interviews",
	"Practice active listening and ask clarifying questions when needed",
	"Follow up with thank you notes after interviews",
}
