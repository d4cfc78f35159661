package game

import (
	"encoding/json"
	"fmt"
)

// OwnerKind discriminates the Owner variant.
type OwnerKind int

const (
	Unclaimed OwnerKind = iota
	PlayerOwned
	RivalOwned
)

// String returns the owner kind name.
func (k OwnerKind) String() string {
	switch k {
	case Unclaimed:
		return "unclaimed"
	case PlayerOwned:
		return "player"
	case RivalOwned:
		return "rival"
	default:
		return "unknown"
	}
}

// Owner identifies who holds a tile lease.
// Rival is the competitor ID and is only meaningful when Kind is RivalOwned.
type Owner struct {
	Kind  OwnerKind
	Rival int
}

// NoOwner is the owner of an unclaimed tile.
var NoOwner = Owner{Kind: Unclaimed}

// PlayerOwner returns the owner value for the player.
func PlayerOwner() Owner { return Owner{Kind: PlayerOwned} }

// RivalOwner returns the owner value for a competitor.
func RivalOwner(id int) Owner { return Owner{Kind: RivalOwned, Rival: id} }

// IsUnclaimed reports whether nobody holds the tile.
func (o Owner) IsUnclaimed() bool { return o.Kind == Unclaimed }

// IsPlayer reports whether the player holds the tile.
func (o Owner) IsPlayer() bool { return o.Kind == PlayerOwned }

// IsRival reports whether the tile is held by the given competitor.
func (o Owner) IsRival(id int) bool { return o.Kind == RivalOwned && o.Rival == id }

func (o Owner) String() string {
	if o.Kind == RivalOwned {
		return fmt.Sprintf("rival:%d", o.Rival)
	}
	return o.Kind.String()
}

type ownerJSON struct {
	Kind  string `json:"kind"`
	Rival *int   `json:"rival,omitempty"`
}

// MarshalJSON encodes the owner as {"kind": ..., "rival": id}.
func (o Owner) MarshalJSON() ([]byte, error) {
	v := ownerJSON{Kind: o.Kind.String()}
	if o.Kind == RivalOwned {
		id := o.Rival
		v.Rival = &id
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (o *Owner) UnmarshalJSON(data []byte) error {
	var v ownerJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case "", "unclaimed":
		*o = NoOwner
	case "player":
		*o = PlayerOwner()
	case "rival":
		if v.Rival == nil {
			return fmt.Errorf("rival owner without id")
		}
		*o = RivalOwner(*v.Rival)
	default:
		return fmt.Errorf("unknown owner kind %q", v.Kind)
	}
	return nil
}

// SurveyRange is the estimated reserve window reported by a survey.
type SurveyRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Tile is one leasable plot of land on the grid.
type Tile struct {
	Row        int          `json:"row"`
	Col        int          `json:"col"`
	Reserve    int          `json:"reserve"`
	OutputRate int          `json:"outputRate"`
	Owner      Owner        `json:"owner"`
	Drilled    bool         `json:"drilled"`
	PumpLevel  int          `json:"pumpLevel"`
	Storage    int          `json:"storage"`
	Capacity   int          `json:"capacity"`
	Survey     *SurveyRange `json:"survey,omitempty"`
}

// NewTile creates an unclaimed, undeveloped tile with default capacity.
func NewTile(row, col, reserve, outputRate int) *Tile {
	return &Tile{
		Row:        row,
		Col:        col,
		Reserve:    reserve,
		OutputRate: outputRate,
		Capacity:   DefaultCapacity,
	}
}

// Depleted reports whether the reserve is exhausted.
func (t *Tile) Depleted() bool {
	return t.Reserve <= 0
}

// AvailableCapacity is the free storage on the tile.
func (t *Tile) AvailableCapacity() int {
	return max(0, t.Capacity-t.Storage)
}

// HasPump reports whether a pump is installed.
func (t *Tile) HasPump() bool {
	return t.PumpLevel > 0
}

// CurrentOutput is the daily pump output before reserve and capacity limits.
// Each level above the first adds half the base rate.
func (t *Tile) CurrentOutput() int {
	if !t.HasPump() {
		return 0
	}
	return t.OutputRate + t.OutputRate*(t.PumpLevel-1)/2
}

// Label renders the tile position with 1-based coordinates.
func (t *Tile) Label() string {
	return fmt.Sprintf("(%d, %d)", t.Row+1, t.Col+1)
}

func (t *Tile) clone() *Tile {
	c := *t
	if t.Survey != nil {
		s := *t.Survey
		c.Survey = &s
	}
	return &c
}
