// Package main demonstrates basic goalgebra usage patterns.
//
// This example walks through expression creation, the simplification
// pipeline, pattern matching, and rewrite rules.
package main

import (
	"fmt"

	"github.com/gitrdm/goalgebra/pkg/algebra"
)

func main() {
	fmt.Println("=== GoAlgebra Examples ===")
	fmt.Println()

	creationAndNormalization()
	summandCollection()
	scalarBubbling()
	patternMatching()
	customRules()
	commutators()
}

// creationAndNormalization demonstrates how Create normalizes operands.
func creationAndNormalization() {
	fmt.Println("1. Creation and Normalization:")

	alg := algebra.NewStdAlgebra()
	a := algebra.NewSymbol("a")
	b := algebra.NewSymbol("b")
	c := algebra.NewSymbol("c")

	// Nested sums flatten, Zero drops out, operands sort canonically.
	nested := alg.Plus.MustCreate(alg.Plus.MustCreate(c, b), alg.Zero, a)
	fmt.Printf("   (c + b) + 0 + a  =>  %s\n", nested)

	// Equal inputs in any order normalize to the same expression.
	other := alg.Plus.MustCreate(a, b, c)
	fmt.Printf("   equal to a + b + c: %v\n", nested.Equal(other))
	fmt.Println()
}

// summandCollection demonstrates the collapse step of the Plus kind.
func summandCollection() {
	fmt.Println("2. Summand Collection:")

	alg := algebra.NewStdAlgebra()
	a := algebra.NewSymbol("a")
	b := algebra.NewSymbol("b")

	sum := alg.Plus.MustCreate(a, b, a, alg.ScalarMul.MustCreate(3, b))
	fmt.Printf("   a + b + a + 3*b  =>  %s\n", sum)

	cancelled := alg.Plus.MustCreate(a, alg.ScalarMul.MustCreate(-1, a))
	fmt.Printf("   a + (-1)*a       =>  %s\n", cancelled)
	fmt.Println()
}

// scalarBubbling demonstrates binary fusion rules on the product.
func scalarBubbling() {
	fmt.Println("3. Scalar Prefactor Bubbling:")

	alg := algebra.NewStdAlgebra()
	a := algebra.NewSymbol("a")
	b := algebra.NewSymbol("b")
	c := algebra.NewSymbol("c")

	prod := alg.Times.MustCreate(
		alg.ScalarMul.MustCreate(2, a), b, alg.ScalarMul.MustCreate(3, c))
	fmt.Printf("   (2*a) * b * (3*c)  =>  %s\n", prod)
	fmt.Println()
}

// patternMatching demonstrates wildcards and bindings.
func patternMatching() {
	fmt.Println("4. Pattern Matching:")

	alg := algebra.NewStdAlgebra()
	a := algebra.NewSymbol("a")
	b := algebra.NewSymbol("b")
	prod := alg.Times.MustCreate(a, b)

	pat := algebra.NewPattern(alg.Times, algebra.Wildcard("x"), algebra.Wildcard("y"))
	res := pat.Match(prod)
	fmt.Printf("   match %s against Times(x, y): %v\n", prod, res.Success)
	fmt.Printf("   x = %s, y = %s\n", res.Bindings().Expr("x"), res.Bindings().Expr("y"))

	// A repeated wildcard name requires equal operands.
	same := algebra.NewPattern(alg.Times, algebra.Wildcard("x"), algebra.Wildcard("x"))
	fmt.Printf("   match against Times(x, x): %v (%s)\n",
		same.Match(prod).Success, same.Match(prod).Reason)
	fmt.Println()
}

// customRules demonstrates registering and scoping rewrite rules.
func customRules() {
	fmt.Println("5. Custom Rewrite Rules:")

	alg := algebra.NewStdAlgebra()
	a := algebra.NewSymbol("a")
	b := algebra.NewSymbol("b")

	// Scope the extra rule so the algebra is unchanged afterwards.
	restore := algebra.TemporaryRules(alg.Times)

	// a * b rewrites to b * a plus a correction term.
	alg.Times.MustAddBinaryRule("swap-ab",
		algebra.PatternHead(algebra.Lit(a), algebra.Lit(b)),
		func(bnd algebra.Bindings) (any, error) {
			return alg.Plus.Create(
				alg.Times.MustCreate(b, a),
				alg.Commutator.MustCreate(a, b))
		})

	prod := alg.Times.MustCreate(a, b)
	fmt.Printf("   with rule:    a * b  =>  %s\n", prod)

	restore()
	prod = alg.Times.MustCreate(a, b)
	fmt.Printf("   restored:     a * b  =>  %s\n", prod)
	fmt.Println()
}

// commutators demonstrates the space-aware commutator rules.
func commutators() {
	fmt.Println("6. Commutators and Spaces:")

	alg := algebra.NewStdAlgebra()
	q1 := algebra.NewLocalSpace("q1")
	q2 := algebra.NewLocalSpace("q2")
	x := algebra.NewSymbolIn("x", q1)
	y := algebra.NewSymbolIn("y", q2)
	z := algebra.NewSymbolIn("z", q1)

	fmt.Printf("   [x, x]              =>  %s\n", alg.Commutator.MustCreate(x, x))
	fmt.Printf("   [x, y] (disjoint)   =>  %s\n", alg.Commutator.MustCreate(x, y))
	fmt.Printf("   [x, z] (shared q1)  =>  %s\n", alg.Commutator.MustCreate(x, z))
	fmt.Printf("   [2*x, z]            =>  %s\n",
		alg.Commutator.MustCreate(alg.ScalarMul.MustCreate(2, x), z))
}
