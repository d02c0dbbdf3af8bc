package batch

import "testing"

func defaultClassifier() *Classifier {
	return NewClassifier(DefaultPrefix, DefaultIntakeCodes())
}

func TestClassifyKnownIntakeCodes(t *testing.T) {
	c := defaultClassifier()

	cases := map[string]string{
		"b2512345": "b1",
		"b2498765": "b2",
		"b2300001": "b3",
		"b2200001": "b4",
	}

	for roll, want := range cases {
		got, ok := c.Classify(roll)
		if !ok {
			t.Fatalf("Classify(%q): expected a batch", roll)
		}
		if got != want {
			t.Fatalf("Classify(%q) = %q, want %q", roll, got, want)
		}
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	c := defaultClassifier()

	got, ok := c.Classify("B2512345")
	if !ok || got != "b1" {
		t.Fatalf("Classify(upper) = %q, %v; want b1, true", got, ok)
	}
}

func TestClassifyUnrecognizedInput(t *testing.T) {
	c := defaultClassifier()

	unclassifiable := []string{
		"",
		"b",
		"b2",
		"b99",      // code not in intake table
		"b21xxxx",  // code not in intake table
		"x2512345", // wrong prefix letter
		"bb512345", // code is not two digits
		"2512345",  // missing prefix letter
		"admin1",
		"parent@example.com",
	}

	for _, id := range unclassifiable {
		if got, ok := c.Classify(id); ok {
			t.Fatalf("Classify(%q) = %q; expected unclassifiable", id, got)
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := defaultClassifier()

	first, ok1 := c.Classify("b2401234")
	second, ok2 := c.Classify("b2401234")
	if ok1 != ok2 || first != second {
		t.Fatalf("Classify not deterministic: (%q,%v) vs (%q,%v)", first, ok1, second, ok2)
	}
}

func TestClassifyNilReceiver(t *testing.T) {
	var c *Classifier
	if _, ok := c.Classify("b2512345"); ok {
		t.Fatal("nil classifier must classify nothing")
	}
}

func TestNewClassifierCopiesTable(t *testing.T) {
	codes := DefaultIntakeCodes()
	c := NewClassifier('b', codes)

	delete(codes, "25")

	if _, ok := c.Classify("b2512345"); !ok {
		t.Fatal("classifier must not share the caller's intake table")
	}
}
