package catalog

import "testing"

func TestVocabularyKeysUnique(t *testing.T) {
	for _, c := range []Context{ContextSubject, ContextScope} {
		seen := make(map[string]struct{})
		for _, b := range ForContext(c) {
			if _, dup := seen[b.Key]; dup {
				t.Fatalf("%s: duplicate key %q", c, b.Key)
			}
			seen[b.Key] = struct{}{}
			if b.Label == "" {
				t.Fatalf("%s: key %q has no label", c, b.Key)
			}
		}
	}
}

func TestZeroFlagEntriesNeverRender(t *testing.T) {
	for _, c := range []Context{ContextSubject, ContextScope} {
		all := AllFlags(c)
		labels := LabelsFor(all, c)

		rendered := make(map[string]struct{}, len(labels))
		for _, l := range labels {
			rendered[l] = struct{}{}
		}
		for _, b := range ForContext(c) {
			if !b.Flag.IsZero() {
				continue
			}
			if _, ok := rendered[b.Label]; ok {
				t.Fatalf("%s: placeholder %q rendered as enabled", c, b.Key)
			}
		}
	}
}

func TestAllFlagsMatchesUnionOfEntries(t *testing.T) {
	for _, c := range []Context{ContextSubject, ContextScope} {
		var want Mask128
		for _, b := range ForContext(c) {
			want = want.Or(b.Flag)
		}
		if !AllFlags(c).Equal(want) {
			t.Fatalf("%s: AllFlags out of sync with the vocabulary", c)
		}
	}
}

func TestFlagForTolerantOfUnknownKeys(t *testing.T) {
	if !FlagFor("NoSuchPermission", ContextSubject).IsZero() {
		t.Fatal("unknown key must map to the zero mask")
	}
	if _, ok := Lookup("NoSuchPermission", ContextScope); ok {
		t.Fatal("unknown key must not resolve")
	}
}

func TestPartitionCoversVocabularyInOrder(t *testing.T) {
	for _, c := range []Context{ContextSubject, ContextScope} {
		bits := ForContext(c)
		pages := Partition(c, DefaultPageSize)

		var flat []Bit
		for i, page := range pages {
			if len(page) == 0 {
				t.Fatalf("%s: empty page %d", c, i)
			}
			if len(page) > DefaultPageSize {
				t.Fatalf("%s: page %d over the cap: %d", c, i, len(page))
			}
			flat = append(flat, page...)
		}
		if len(flat) != len(bits) {
			t.Fatalf("%s: partition lost entries: %d vs %d", c, len(flat), len(bits))
		}
		for i := range bits {
			if flat[i].Key != bits[i].Key {
				t.Fatalf("%s: partition reordered entry %d", c, i)
			}
		}
	}
}

func TestPartitionFallsBackToDefaultPageSize(t *testing.T) {
	a := Partition(ContextSubject, 0)
	b := Partition(ContextSubject, DefaultPageSize)
	if len(a) != len(b) {
		t.Fatalf("page size fallback mismatch: %d vs %d pages", len(a), len(b))
	}
}

func TestSubjectVocabularySpansThreePages(t *testing.T) {
	pages := Partition(ContextSubject, DefaultPageSize)
	if len(pages) != 3 {
		t.Fatalf("expected the role vocabulary on 3 pages, got %d", len(pages))
	}
	if len(pages[0]) != DefaultPageSize || len(pages[1]) != DefaultPageSize || len(pages[2]) != 1 {
		t.Fatalf("unexpected page sizes: %d/%d/%d", len(pages[0]), len(pages[1]), len(pages[2]))
	}
}

func TestLabelsForOrderedByVocabulary(t *testing.T) {
	mask := FlagFor("Administrator", ContextSubject).
		Or(FlagFor("ViewChannels", ContextSubject))

	labels := LabelsFor(mask, ContextSubject)
	if len(labels) != 2 {
		t.Fatalf("expected two labels, got %v", labels)
	}
	// ViewChannels comes before Administrator in the vocabulary.
	if labels[0] != "View Channels" || labels[1] != "Administrator" {
		t.Fatalf("labels out of vocabulary order: %v", labels)
	}
}

func TestAliasedKeysShareBits(t *testing.T) {
	// CreateEvents keeps the platform's historical aliasing to CreateInvite.
	if !FlagFor("CreateEvents", ContextSubject).Equal(FlagFor("CreateInvite", ContextSubject)) {
		t.Fatal("CreateEvents must alias CreateInvite")
	}
	if !FlagFor("UseActivities", ContextScope).Equal(FlagFor("UseExternalApps", ContextScope)) {
		t.Fatal("UseActivities must alias UseExternalApps")
	}
}
