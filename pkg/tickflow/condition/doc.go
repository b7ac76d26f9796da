/*
Package condition compiles small boolean expressions used to configure
predicates, such as the alert condition of a watch node.

# Syntax

	<or>      := <and> ('or' <and>)*
	<and>     := <unary> ('and' <unary>)*
	<unary>   := ('not' | '!') <unary> | '(' <or> ')' | <compare>
	<compare> := <operand> [<op> <operand>]
	<op>      := '==' | '!=' | '<' | '>' | '<=' | '>=' | 'contains' | custom
	<operand> := 'string' | "string" | number | true | false | null | identifier

'and' binds tighter than 'or'. An expression is compiled once and can then
be matched against any number of variable sets:

	c, err := condition.Compile("value >= 22 and mode != 'off'")
	if err != nil {
	    return err
	}
	c.Match(map[string]any{"value": 23.5, "mode": "auto"}) // true

# Operators

== and != compare the formatted values, so 5 == '5' holds. <, >, <= and >=
compare numerically; strings are parsed as numbers and anything else counts
as zero. contains tests for a substring of the formatted left operand.

Custom binary operators are registered by name:

	c, err := condition.Compile("name matches '^probe'",
	    condition.WithOperator("matches", func(l, r any) bool {
	        ok, _ := regexp.MatchString(fmt.Sprint(r), fmt.Sprint(l))
	        return ok
	    }))

# Identifiers

An identifier resolves to the variable of that name. A dotted identifier
that is not a variable itself descends into nested maps, so sensor.value
reads vars["sensor"]["value"]. An unknown identifier evaluates to its own
name as a string.

# Truthiness

A lone operand is tested for truthiness: nil, false, "" and zero numbers
are false, everything else is true. An empty expression never matches.
*/
package condition
