package service

import "errors"

// Error kinds surfaced by the services. Handlers map these onto HTTP statuses
// and envelope messages.
var (
	// ErrValidation marks malformed or missing request input.
	ErrValidation = errors.New("validation failed")

	// ErrLLMNotConfigured is returned when no generation API key is set.
	ErrLLMNotConfigured = errors.New("recipe generation is not configured")

	// ErrImageAnalysis is returned when the vision call yields no usable
	// description. Distinct from a generation failure so the caller can be
	// told to try text input instead.
	ErrImageAnalysis = errors.New("failed to analyze image")

	// ErrGenerationFailed is returned when the generation provider errors.
	ErrGenerationFailed = errors.New("failed to generate recipe")

	// ErrRecipeParse is returned when the provider response is not valid JSON.
	ErrRecipeParse = errors.New("failed to parse recipe from AI response")

	// ErrInvalidRecipe is returned when the parsed recipe is structurally
	// incomplete (empty name, ingredients or instructions).
	ErrInvalidRecipe = errors.New("invalid recipe format received from AI")

	// ErrForbidden is returned when an authenticated caller is not the owner
	// of the requested resource.
	ErrForbidden = errors.New("not authorized to access this resource")

	// ErrEmailTaken is returned on registration with an existing email.
	ErrEmailTaken = errors.New("user already exists")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
