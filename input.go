package vaadin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tebeka/selenium"
)

// InputMethod sets the value of one kind of form field.
type InputMethod interface {
	Input(entity, attribute, text string) error
}

// InputResolver picks the InputMethod suited to the field bound to attribute
// of entity.
type InputResolver interface {
	Resolve(entity, attribute string) (InputMethod, error)
}

// Field widget classes recognised by DefaultInputResolver.
const (
	FilterSelectClass = "v-filterselect" // Vaadin 7 combo box
	ComboBoxClass     = "v-combobox"
	DateFieldClass    = "v-datefield"
	CheckBoxClass     = "v-checkbox"
)

// DefaultInputResolver inspects the class attribute of the field element to
// choose between combo box, date field, check box and plain text input.
type DefaultInputResolver struct {
	wd     selenium.WebDriver
	waiter *Waiter
	strict bool
}

// NewDefaultInputResolver returns a resolver for fields of wd. Methods it
// returns wait for the framework with waiter after setting a value.
func NewDefaultInputResolver(wd selenium.WebDriver, waiter *Waiter) *DefaultInputResolver {
	return &DefaultInputResolver{wd: wd, waiter: waiter}
}

// Resolve implements InputResolver.
func (r *DefaultInputResolver) Resolve(entity, attribute string) (InputMethod, error) {
	elem, err := find(r.wd, Field(entity, attribute), r.strict)
	if err != nil {
		return nil, err
	}
	class, err := elem.GetAttribute("class")
	if err != nil {
		return nil, fmt.Errorf("reading class of %s: %w", FieldID(entity, attribute), err)
	}
	base := inputBase{wd: r.wd, waiter: r.waiter, strict: r.strict}
	switch classes := strings.Fields(class); {
	case hasClass(classes, FilterSelectClass), hasClass(classes, ComboBoxClass):
		return &ComboBoxInput{base}, nil
	case hasClass(classes, DateFieldClass):
		return &DateFieldInput{base}, nil
	case hasClass(classes, CheckBoxClass):
		return &CheckBoxInput{base}, nil
	}
	return &TextInput{base}, nil
}

func hasClass(classes []string, class string) bool {
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}

type inputBase struct {
	wd     selenium.WebDriver
	waiter *Waiter
	strict bool
}

func (b inputBase) field(entity, attribute string) (selenium.WebElement, error) {
	return find(b.wd, Field(entity, attribute), b.strict)
}

// inner returns the native input element wrapped by a composite widget.
func (b inputBase) inner(entity, attribute string) (selenium.WebElement, error) {
	elem, err := b.field(entity, attribute)
	if err != nil {
		return nil, err
	}
	input, err := elem.FindElement(selenium.ByTagName, "input")
	if err != nil {
		return nil, fmt.Errorf("finding input of %s: %w", FieldID(entity, attribute), err)
	}
	return input, nil
}

func (b inputBase) typeInto(elem selenium.WebElement, entity, attribute, keys string) error {
	if err := elem.Clear(); err != nil {
		return fmt.Errorf("clearing %s: %w", FieldID(entity, attribute), err)
	}
	if err := elem.SendKeys(keys); err != nil {
		return fmt.Errorf("typing into %s: %w", FieldID(entity, attribute), err)
	}
	return b.waiter.WaitForFramework()
}

// TextInput clears a text field or text area and types the value.
type TextInput struct{ inputBase }

// Input implements InputMethod.
func (m *TextInput) Input(entity, attribute, text string) error {
	elem, err := m.field(entity, attribute)
	if err != nil {
		return err
	}
	return m.typeInto(elem, entity, attribute, text)
}

// ComboBoxInput types the value into the filter field of a combo box and
// selects the suggestion with Enter.
type ComboBoxInput struct{ inputBase }

// Input implements InputMethod.
func (m *ComboBoxInput) Input(entity, attribute, text string) error {
	elem, err := m.inner(entity, attribute)
	if err != nil {
		return err
	}
	return m.typeInto(elem, entity, attribute, text+selenium.EnterKey)
}

// DateFieldInput types the value into the text part of a date field.
type DateFieldInput struct{ inputBase }

// Input implements InputMethod.
func (m *DateFieldInput) Input(entity, attribute, text string) error {
	elem, err := m.inner(entity, attribute)
	if err != nil {
		return err
	}
	return m.typeInto(elem, entity, attribute, text)
}

// CheckBoxInput toggles a check box until its state matches the value, which
// must parse as a bool.
type CheckBoxInput struct{ inputBase }

// Input implements InputMethod.
func (m *CheckBoxInput) Input(entity, attribute, text string) error {
	want, err := strconv.ParseBool(strings.TrimSpace(text))
	if err != nil {
		return fmt.Errorf("check box %s: %w", FieldID(entity, attribute), err)
	}
	elem, err := m.inner(entity, attribute)
	if err != nil {
		return err
	}
	got, err := elem.IsSelected()
	if err != nil {
		return fmt.Errorf("reading state of %s: %w", FieldID(entity, attribute), err)
	}
	if got == want {
		return nil
	}
	if err := elem.Click(); err != nil {
		return fmt.Errorf("clicking %s: %w", FieldID(entity, attribute), err)
	}
	return m.waiter.WaitForFramework()
}
