package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/tacogips/dcg/internal/params"
	"github.com/tacogips/dcg/internal/template/model"
)

// PromptForParameters asks for a value of each parameter and returns the
// answers keyed by parameter name, in the text form params.FromStrings
// accepts.
func PromptForParameters(decls []model.Parameter) (map[string]string, error) {
	values := make(map[string]string, len(decls))
	if len(decls) == 0 {
		return values, nil
	}

	fmt.Fprintln(msgOut)
	fmt.Fprintln(msgOut, "Please provide values for template parameters:")
	fmt.Fprintln(msgOut)

	for _, p := range decls {
		if !params.Supported(p.Type) {
			return nil, fmt.Errorf("parameter %s has type %s which cannot be entered interactively", p.Name, p.Type)
		}
		value, err := promptForParameter(p)
		if err != nil {
			return nil, fmt.Errorf("failed to prompt for parameter %q: %w", p.Name, err)
		}
		values[p.Name] = value
	}

	return values, nil
}

func promptForParameter(p model.Parameter) (string, error) {
	if strings.TrimSpace(p.Type) == "bool" {
		var result bool
		prompt := &survey.Confirm{
			Message: p.Name,
			Help:    parameterHelp(p),
		}
		if err := survey.AskOne(prompt, &result); err != nil {
			return "", err
		}
		return strconv.FormatBool(result), nil
	}

	var result string
	prompt := &survey.Input{
		Message: fmt.Sprintf("%s (%s)", p.Name, p.Type),
		Help:    parameterHelp(p),
	}
	if err := survey.AskOne(prompt, &result, survey.WithValidator(parameterValidator(p))); err != nil {
		return "", err
	}
	return result, nil
}

// parameterValidator accepts input that converts to the parameter type.
func parameterValidator(p model.Parameter) survey.Validator {
	return func(val interface{}) error {
		str, ok := val.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", val)
		}
		if _, err := params.FromString(p.Name, p.Type, str); err != nil {
			return err
		}
		return nil
	}
}

// parameterHelp describes the input format of a parameter type.
func parameterHelp(p model.Parameter) string {
	typ := strings.ReplaceAll(p.Type, " ", "")
	switch {
	case strings.HasPrefix(typ, "[]"):
		return fmt.Sprintf("Comma-separated list of %s values", strings.TrimPrefix(typ, "[]"))
	case strings.HasPrefix(typ, "map["):
		return "Comma-separated key=value pairs"
	default:
		return fmt.Sprintf("A value of type %s", p.Type)
	}
}
