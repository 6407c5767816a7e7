package providers

import "errors"

// Registry is the main entry point for hosted-API clients. Handlers resolve
// providers by name; unknown names are errors, never panics.
type Registry struct {
	providers   map[string]Provider
	defaultChat string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// SetDefaultChat sets the chat provider used when a request names none.
func (r *Registry) SetDefaultChat(name string) error {
	p, exists := r.providers[name]
	if !exists {
		return errors.New("provider not registered")
	}
	if _, ok := p.(ChatProvider); !ok {
		return errors.New("provider does not support chat")
	}
	r.defaultChat = name
	return nil
}

// Chat returns the named chat provider, or the default one for an empty
// name.
func (r *Registry) Chat(name string) (ChatProvider, error) {
	if name == "" {
		name = r.defaultChat
	}
	p, exists := r.providers[name]
	if !exists {
		return nil, errors.New("chat provider not found")
	}
	chat, ok := p.(ChatProvider)
	if !ok {
		return nil, errors.New("provider does not support chat")
	}
	return chat, nil
}

// Speech returns the named speech provider.
func (r *Registry) Speech(name string) (SpeechProvider, error) {
	p, exists := r.providers[name]
	if !exists {
		return nil, errors.New("speech provider not found")
	}
	speech, ok := p.(SpeechProvider)
	if !ok {
		return nil, errors.New("provider does not support speech")
	}
	return speech, nil
}
