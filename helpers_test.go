package siteforge

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Mixed CASE 42  ", "mixed-case-42"},
		{"a--b__c", "a-b-c"},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	cases := []struct {
		base string
		segs []string
		want string
	}{
		{"http://localhost:8080", []string{"api", "sections", "header"}, "http://localhost:8080/api/sections/header/"},
		{"https://example.com/base", []string{"x"}, "https://example.com/base/x/"},
		{"https://example.com", nil, "https://example.com"},
	}
	for _, c := range cases {
		if got := BuildURL(c.base, c.segs...); got != c.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", c.base, c.segs, got, c.want)
		}
	}
}
