package presentation

// Presentation is an alphabet plus a list of defining relations (spec §3).
// It is constructed once: alphabet and rules set, then consumed to seed an
// engine (spec §3 "Lifecycle"). Rules added here are canonical user input
// and are never mutated; engines derive their own working copies.
type Presentation struct {
	alphabet *Alphabet
	rules    []Rule
	isMonoid bool
}

// New creates an empty presentation over alphabet, for either a monoid
// (isMonoid true, empty words permitted at word boundaries) or a semigroup
// (isMonoid false, empty words rejected).
func New(alphabet *Alphabet, isMonoid bool) *Presentation {
	return &Presentation{alphabet: alphabet, isMonoid: isMonoid}
}

// Alphabet returns the presentation's alphabet.
func (p *Presentation) Alphabet() *Alphabet { return p.alphabet }

// IsMonoid reports whether the empty word is a legal word for this
// presentation.
func (p *Presentation) IsMonoid() bool { return p.isMonoid }

// Rules returns the presentation's relation list. The returned slice must
// not be mutated by the caller.
func (p *Presentation) Rules() []Rule { return p.rules }

// ValidateWord reports whether every letter of w lies in the alphabet and,
// for a semigroup presentation, that w is non-empty.
func (p *Presentation) ValidateWord(w Word) error {
	if err := p.alphabet.Validate(w); err != nil {
		return err
	}
	if !p.isMonoid && len(w) == 0 {
		return ErrEmptyWord
	}
	return nil
}

// ValidateRule reports whether both sides of (u, v) validate per
// ValidateWord.
func (p *Presentation) ValidateRule(u, v Word) error {
	if err := p.ValidateWord(u); err != nil {
		return &RuleError{Index: -1, Err: err}
	}
	if err := p.ValidateWord(v); err != nil {
		return &RuleError{Index: -1, Err: err}
	}
	return nil
}

// AddRule validates and appends (u, v) to the presentation's relation list.
func (p *Presentation) AddRule(u, v Word) error {
	if err := p.ValidateRule(u, v); err != nil {
		return err
	}
	p.rules = append(p.rules, Rule{Lhs: u.Clone(), Rhs: v.Clone()})
	return nil
}

// AddRuleString is a convenience wrapper that validates and converts s, t
// through the alphabet before calling AddRule.
func (p *Presentation) AddRuleString(s, t string) error {
	u, err := p.alphabet.StringToWord(s)
	if err != nil {
		return err
	}
	v, err := p.alphabet.StringToWord(t)
	if err != nil {
		return err
	}
	return p.AddRule(u, v)
}
