package crusher

import "github.com/pochkachaiki/millsim/internal/random"

func randomSource() *random.Source { return random.New(8, 8) }
