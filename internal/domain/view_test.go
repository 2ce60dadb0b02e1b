package domain

import "testing"

func viewGame() *Game {
	revealed := card("KD")
	return &Game{
		ID:          "g1",
		LobbyID:     "l1",
		DrawPile:    cards("2C", "3C"),
		DiscardPile: cards("4H", "6H"),
		BurnedPile:  cards("10S"),
		HandSize:    3,
		Status:      GameActive,
		TurnIndex:   1,
		Players: []*PlayerState{
			{UserID: "a", Username: "alice", Hand: cards("5S"), Open: cards("9D"), Hidden: cards("QC")},
			{UserID: "b", Username: "bob", Hidden: cards("KD", "JS"), RevealedHidden: &revealed},
		},
	}
}

func TestProjectViewHidesOpponents(t *testing.T) {
	g := viewGame()
	view, ok := ProjectView(g, "a")
	if !ok {
		t.Fatal("participant was rejected")
	}

	if view.DrawCount != 2 || view.BurnedCount != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", view.DrawCount, view.BurnedCount)
	}
	if view.DiscardTop == nil || view.DiscardTop.ID != "6H" {
		t.Fatalf("discard top = %v, want 6H", view.DiscardTop)
	}
	if view.PhaseForYou != PhaseHand {
		t.Fatalf("phase = %s, want hand", view.PhaseForYou)
	}
	if view.CurrentTurnUsername != "bob" {
		t.Fatalf("current turn = %s, want bob", view.CurrentTurnUsername)
	}
	if len(view.You.Hidden) != 1 || view.You.Hidden[0].ID != "QC" {
		t.Fatalf("own hidden cards should be shown, got %v", view.You.Hidden)
	}
	if len(view.Others) != 1 {
		t.Fatalf("others = %d, want 1", len(view.Others))
	}
	other := view.Others[0]
	if other.Counts.Hidden != 2 || other.Counts.Hand != 0 {
		t.Fatalf("opponent counts = %+v", other.Counts)
	}
}

func TestProjectViewShowsOwnReveal(t *testing.T) {
	view, ok := ProjectView(viewGame(), "b")
	if !ok {
		t.Fatal("participant was rejected")
	}
	if view.PhaseForYou != PhaseHidden {
		t.Fatalf("phase = %s, want hidden", view.PhaseForYou)
	}
	if view.You.RevealedHidden == nil || view.You.RevealedHidden.ID != "KD" {
		t.Fatalf("revealed = %v, want KD", view.You.RevealedHidden)
	}
}

func TestProjectViewRejectsOutsiders(t *testing.T) {
	if _, ok := ProjectView(viewGame(), "mallory"); ok {
		t.Fatal("outsider received a view")
	}
}

func TestProjectViewEmptyDiscard(t *testing.T) {
	g := viewGame()
	g.DiscardPile = nil
	view, _ := ProjectView(g, "a")
	if view.DiscardTop != nil {
		t.Fatalf("discard top = %v, want nil", view.DiscardTop)
	}
}
