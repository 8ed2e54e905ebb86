package types

// ErrorPrefix starts the rendered text of every failed completion.
const ErrorPrefix = "Error generating content: "

// Completion is the outcome of one generation: either Text or Err is set.
type Completion struct {
	Text  string
	Err   error
	Usage Usage
}

// Usage reports token accounting; PromptEstimate is computed locally and is
// zero when no estimate was available.
type Usage struct {
	PromptEstimate   int
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func Succeeded(text string, usage Usage) Completion {
	return Completion{Text: text, Usage: usage}
}

func Failed(err error) Completion {
	return Completion{Err: err}
}

func (c Completion) OK() bool {
	return c.Err == nil
}

// String renders the completion the way API callers see it: the generated
// text, or ErrorPrefix followed by the failure description.
func (c Completion) String() string {
	if c.Err != nil {
		return ErrorPrefix + c.Err.Error()
	}
	return c.Text
}
