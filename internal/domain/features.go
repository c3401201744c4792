package domain

const DefaultMaxUniqueReactions = 10

// Features - неизменяемый снимок флагов. Новый снимок берётся на каждый запрос.
type Features struct {
	Reactions          bool
	Calling            bool
	Broadcasting       bool
	Events             bool
	MaxUniqueReactions int
}

func DefaultFeatures() Features {
	return Features{
		Reactions:          true,
		Calling:            true,
		Broadcasting:       true,
		Events:             true,
		MaxUniqueReactions: DefaultMaxUniqueReactions,
	}
}
