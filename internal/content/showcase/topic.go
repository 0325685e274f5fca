package showcase

import (
	"strings"
	"unicode"

	"github.com/yungbote/neurobridge-coursegen/internal/content/blocks"
)

// Topic is a subject domain used to flavour templated and generated blocks.
type Topic struct {
	Name     string
	Keywords []string
	// Example is a short illustrative phrase woven into templated text.
	Example  string
	Resource string
	Quotes   []blocks.QuotePayload
}

const (
	TopicFinance    = "finance"
	TopicLaw        = "law"
	TopicTechnology = "technology"
	TopicHealthcare = "healthcare"
	TopicEducation  = "education"
	TopicMarketing  = "marketing"
	TopicGeneral    = "general"
)

// topics is in tie-break order; general is the fallback and never matches.
var topics = []Topic{
	{
		Name:     TopicFinance,
		Keywords: []string{"finance", "financial", "money", "budget", "budgeting", "investing", "investment", "accounting", "tax", "taxes", "banking", "stock", "stocks", "credit", "savings", "economics", "wealth", "retirement"},
		Example:  "building a monthly budget that leaves room for savings",
		Resource: "https://www.investopedia.com",
		Quotes: []blocks.QuotePayload{
			{Quote: "Beware of little expenses; a small leak will sink a great ship.", Author: "Benjamin Franklin"},
			{Quote: "Do not save what is left after spending, but spend what is left after saving.", Author: "Warren Buffett"},
			{Quote: "The stock market is a device for transferring money from the impatient to the patient.", Author: "Warren Buffett"},
		},
	},
	{
		Name:     TopicLaw,
		Keywords: []string{"law", "legal", "contract", "contracts", "court", "litigation", "compliance", "regulation", "regulatory", "rights", "constitution", "constitutional", "criminal", "tort", "attorney", "paralegal", "gdpr"},
		Example:  "reading a contract clause before signing it",
		Resource: "https://www.law.cornell.edu",
		Quotes: []blocks.QuotePayload{
			{Quote: "Injustice anywhere is a threat to justice everywhere.", Author: "Martin Luther King Jr."},
			{Quote: "The life of the law has not been logic; it has been experience.", Author: "Oliver Wendell Holmes Jr."},
			{Quote: "Equal justice under law.", Author: "Supreme Court of the United States"},
		},
	},
	{
		Name:     TopicTechnology,
		Keywords: []string{"technology", "programming", "python", "javascript", "go", "golang", "java", "software", "coding", "code", "web", "data", "cloud", "computer", "computing", "ai", "ml", "cybersecurity", "devops", "database", "developer", "engineering"},
		Example:  "writing a small script that automates a repetitive task",
		Resource: "https://developer.mozilla.org",
		Quotes: []blocks.QuotePayload{
			{Quote: "Simplicity is prerequisite for reliability.", Author: "Edsger W. Dijkstra"},
			{Quote: "Programs must be written for people to read, and only incidentally for machines to execute.", Author: "Harold Abelson"},
			{Quote: "Any sufficiently advanced technology is indistinguishable from magic.", Author: "Arthur C. Clarke"},
		},
	},
	{
		Name:     TopicHealthcare,
		Keywords: []string{"health", "healthcare", "medical", "medicine", "nursing", "nurse", "clinical", "patient", "patients", "anatomy", "nutrition", "wellness", "pharmacy", "mental", "therapy", "hospital", "care"},
		Example:  "taking a patient history before recommending treatment",
		Resource: "https://medlineplus.gov",
		Quotes: []blocks.QuotePayload{
			{Quote: "The good physician treats the disease; the great physician treats the patient who has the disease.", Author: "William Osler"},
			{Quote: "Wherever the art of medicine is loved, there is also a love of humanity.", Author: "Hippocrates"},
			{Quote: "It is health that is real wealth and not pieces of gold and silver.", Author: "Mahatma Gandhi"},
		},
	},
	{
		Name:     TopicEducation,
		Keywords: []string{"education", "teaching", "teacher", "teachers", "classroom", "curriculum", "pedagogy", "instruction", "instructional", "tutoring", "school", "students", "lesson", "assessment"},
		Example:  "planning a lesson that checks understanding along the way",
		Resource: "https://www.edutopia.org",
		Quotes: []blocks.QuotePayload{
			{Quote: "The beautiful thing about learning is that nobody can take it away from you.", Author: "B.B. King"},
			{Quote: "Education is the most powerful weapon which you can use to change the world.", Author: "Nelson Mandela"},
			{Quote: "Live as if you were to die tomorrow. Learn as if you were to live forever.", Author: "Mahatma Gandhi"},
		},
	},
	{
		Name:     TopicMarketing,
		Keywords: []string{"marketing", "brand", "branding", "advertising", "seo", "sales", "social", "media", "content", "campaign", "campaigns", "customer", "customers", "growth", "email", "ecommerce"},
		Example:  "launching a campaign aimed at a clearly defined audience",
		Resource: "https://www.thinkwithgoogle.com",
		Quotes: []blocks.QuotePayload{
			{Quote: "The aim of marketing is to know and understand the customer so well the product or service fits him and sells itself.", Author: "Peter Drucker"},
			{Quote: "Marketing is no longer about the stuff that you make, but about the stories you tell.", Author: "Seth Godin"},
			{Quote: "Your brand is what other people say about you when you're not in the room.", Author: "Jeff Bezos"},
		},
	},
}

var generalTopic = Topic{
	Name:     TopicGeneral,
	Example:  "applying a new idea to a real situation from everyday life",
	Resource: "https://en.wikipedia.org",
	Quotes: []blocks.QuotePayload{
		{Quote: "An investment in knowledge pays the best interest.", Author: "Benjamin Franklin"},
		{Quote: "The more that you read, the more things you will know.", Author: "Dr. Seuss"},
		{Quote: "Anyone who stops learning is old, whether at twenty or eighty.", Author: "Henry Ford"},
	},
}

// Topics returns the known domains in tie-break order, general last.
func Topics() []Topic {
	out := append([]Topic(nil), topics...)
	return append(out, generalTopic)
}

// DetectTopic classifies a course title by counting keyword hits on its word
// tokens. The domain with most hits wins; ties go to the earlier domain.
func DetectTopic(title string) Topic {
	words := map[string]int{}
	for _, w := range strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w]++
	}
	best, bestHits := generalTopic, 0
	for _, t := range topics {
		hits := 0
		for _, k := range t.Keywords {
			hits += words[k]
		}
		if hits > bestHits {
			best, bestHits = t, hits
		}
	}
	return best
}

// TopicByName returns the named topic, or general when unknown.
func TopicByName(name string) Topic {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range topics {
		if t.Name == name {
			return t
		}
	}
	return generalTopic
}
