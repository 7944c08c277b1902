package mill

import "github.com/pochkachaiki/millsim/internal/random"

func randomSource() *random.Source { return random.New(2024, 0) }
