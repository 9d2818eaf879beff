package narrative

import "fmt"

// NarrativeStyle selects the voice of the story arc.
type NarrativeStyle string

const (
	StyleCasual       NarrativeStyle = "casual"
	StyleProfessional NarrativeStyle = "professional"
	StyleStorytelling NarrativeStyle = "storytelling"
	StyleEducational  NarrativeStyle = "educational"
)

// StyleTemplate provides the three functions a narrative style needs.
// Adding a style means registering a new template; nothing else changes.
type StyleTemplate struct {
	Introduce    func(name, purpose string) string
	DescribeStep func(name, purpose, context string) string
	Conclude     func(outcome, benefits string) string
}

var styleTemplates = map[NarrativeStyle]StyleTemplate{
	StyleCasual: {
		Introduce: func(name, purpose string) string {
			return fmt.Sprintf("So here's %s. In short, it %s. Let's take a quick walk through it.", name, purpose)
		},
		DescribeStep: func(name, purpose, context string) string {
			return fmt.Sprintf("Next up is %s, which %s. %s", name, purpose, context)
		},
		Conclude: func(outcome, benefits string) string {
			return fmt.Sprintf("And that's the whole trip: %s. Nice part is, %s.", outcome, benefits)
		},
	},
	StyleProfessional: {
		Introduce: func(name, purpose string) string {
			return fmt.Sprintf("The workflow %q is designed to %s. The following sections describe each stage in order.", name, purpose)
		},
		DescribeStep: func(name, purpose, context string) string {
			return fmt.Sprintf("Stage %s: %s. %s", name, purpose, context)
		},
		Conclude: func(outcome, benefits string) string {
			return fmt.Sprintf("Upon completion, %s. Key benefits: %s.", outcome, benefits)
		},
	},
	StyleStorytelling: {
		Introduce: func(name, purpose string) string {
			return fmt.Sprintf("Every run of %s begins the same way: a piece of information arrives with a job to do — it needs to %s.", name, purpose)
		},
		DescribeStep: func(name, purpose, context string) string {
			return fmt.Sprintf("Then our data reaches %s, where it %s. %s", name, purpose, context)
		},
		Conclude: func(outcome, benefits string) string {
			return fmt.Sprintf("At journey's end, %s — and because of the path it took, %s.", outcome, benefits)
		},
	},
	StyleEducational: {
		Introduce: func(name, purpose string) string {
			return fmt.Sprintf("Let's study %s. Learning goal: understand how it manages to %s, one step at a time.", name, purpose)
		},
		DescribeStep: func(name, purpose, context string) string {
			return fmt.Sprintf("Step: %s. What it does: %s. Why it matters: %s", name, purpose, context)
		},
		Conclude: func(outcome, benefits string) string {
			return fmt.Sprintf("To recap, %s. Remember the takeaway: %s.", outcome, benefits)
		},
	},
}

// templateFor returns the registered template, defaulting to the
// professional voice for unknown styles.
func templateFor(style NarrativeStyle) StyleTemplate {
	if template, ok := styleTemplates[style]; ok {
		return template
	}
	return styleTemplates[StyleProfessional]
}
