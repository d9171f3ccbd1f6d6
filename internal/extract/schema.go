package extract

import (
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/tutu-network/aioncli/internal/domain"
)

// OptionsFunction declares the option parameters the model should extract.
var OptionsFunction = openai.FunctionDefinition{
	Name:        domain.OptionsFunctionName,
	Description: "Get the key option parameters from the input text",
	Parameters: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			domain.ArgOption: {
				Type:        jsonschema.String,
				Description: "Name of the Option call or put",
			},
			domain.ArgStrike: {
				Type:        jsonschema.Integer,
				Description: "Strike price of the option.",
			},
			domain.ArgPremium: {
				Type:        jsonschema.Integer,
				Description: "Premium of the option.",
			},
		},
	},
}

// FunctionCallAuto lets the model decide whether to call a function.
const FunctionCallAuto = "auto"

// Functions returns the function list sent with every request.
func Functions() []openai.FunctionDefinition {
	return []openai.FunctionDefinition{OptionsFunction}
}
