package intent

import "testing"

func TestIsNewsQuery(t *testing.T) {
	cases := []struct {
		message string
		want    bool
	}{
		{"比特币最新消息", true},
		{"比特币新闻有哪些", true},
		{"btc latest news", true},
		{"what's the hot trend for bitcoin", true},
		{"btc price prediction", false},       // currency but no news keyword
		{"any news about the weather", false}, // news keyword but no currency
		{"hello there", false},
	}
	for _, tc := range cases {
		if got := IsNewsQuery(tc.message); got != tc.want {
			t.Fatalf("IsNewsQuery(%q) = %v, want %v", tc.message, got, tc.want)
		}
	}
}

func TestHorizonPhrases(t *testing.T) {
	cases := []struct {
		message string
		want    int
	}{
		{"预测3天的价格", 3},
		{"预测三天的价格", 3},
		{"predict the next 3 days", 3},
		{"一周的走势", 7},
		{"7天预测", 7},
		{"price for a week", 7},
		{"预测未来14天", 14},
		{"两周之后会怎样", 14},
		{"two weeks out", 14},
		{"未来30天", 30},
		{"一个月的预测", 30},
		{"forecast a month ahead", 30},
	}
	for _, tc := range cases {
		if got := Horizon(tc.message); got != tc.want {
			t.Fatalf("Horizon(%q) = %d, want %d", tc.message, got, tc.want)
		}
	}
}

func TestHorizonDefaultIsSeven(t *testing.T) {
	if got := Horizon("比特币价格预测"); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
	if got := Horizon(""); got != 7 {
		t.Fatalf("expected default 7 for empty message, got %d", got)
	}
}

func TestHorizonEarliestPhraseWins(t *testing.T) {
	// "3天" appears before "一周": earliest occurrence takes precedence.
	if got := Horizon("先看3天，再看一周"); got != 3 {
		t.Fatalf("expected 3 for earliest match, got %d", got)
	}
	if got := Horizon("a week first, then 3 days"); got != 7 {
		t.Fatalf("expected 7 for earliest match, got %d", got)
	}
}

func TestClassifyCombinesIntentAndHorizon(t *testing.T) {
	c := Classify("比特币最新消息")
	if !c.IsNewsQuery {
		t.Fatal("expected news query")
	}
	if c.HorizonDays != 7 {
		t.Fatalf("expected default horizon, got %d", c.HorizonDays)
	}

	c = Classify("预测14天")
	if c.IsNewsQuery {
		t.Fatal("did not expect news query")
	}
	if c.HorizonDays != 14 {
		t.Fatalf("expected 14, got %d", c.HorizonDays)
	}
}
