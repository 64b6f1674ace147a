package hypermedia

// InputType selects the form control generated for a template property in
// the hypertext representation.
type InputType string

const (
	InputText     InputType = "text"
	InputPassword InputType = "password"
	InputEmail    InputType = "email"
	InputNumber   InputType = "number"
	InputDate     InputType = "date"
	InputSelect   InputType = "select"
	InputTextarea InputType = "textarea"
	InputHidden   InputType = "hidden"
)

// Option is one entry of an enumerated choice list.
type Option struct {
	Value  string
	Prompt string
}

// TemplateProperty describes one input of an action template.
type TemplateProperty struct {
	Name      string
	Prompt    string
	Required  bool
	Value     string
	Type      InputType
	Regex     string
	MinLength int
	MaxLength int
	Options   []Option
}

// Template is a HAL-FORMS style descriptor of a state-changing action the
// client may perform on a resource: target, method, and the inputs the
// action expects.
type Template struct {
	Key         string
	Title       string
	Method      string
	Target      string
	ContentType string
	Properties  []TemplateProperty
}
