package ppu

import "github.com/willow-systems/gbcore/membus"

// object is one OAM entry. Y is stored biased by 16 and X by 8, so a sprite
// at screen origin carries (16, 8).
type object struct {
	oamIndex              int
	y, x, tileIndex, attr uint8
}

func newObject(bus *membus.Bus, oamIndex int) object {
	base := oamIndex * 4
	return object{
		oamIndex:  oamIndex,
		y:         bus.OAMByte(base),
		x:         bus.OAMByte(base + 1),
		tileIndex: bus.OAMByte(base + 2),
		attr:      bus.OAMByte(base + 3),
	}
}

func (o *object) screenY() int { return int(o.y) - 16 }
func (o *object) screenX() int { return int(o.x) - 8 }

func (o *object) useOBP1() bool  { return (o.attr>>4)&1 != 0 }
func (o *object) xFlip() bool    { return (o.attr>>5)&1 != 0 }
func (o *object) yFlip() bool    { return (o.attr>>6)&1 != 0 }
func (o *object) behindBG() bool { return (o.attr>>7)&1 != 0 }

// covers reports whether the sprite's Y range includes the given line for
// the given sprite height.
func (o *object) covers(ly, height int) bool {
	top := o.screenY()
	return top <= ly && ly < top+height
}
