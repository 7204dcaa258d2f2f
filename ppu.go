package famicore

import (
	"famicore/mapper"
	"famicore/ppu"
)

func CreateStatusRegister() ppu.Register {
	return ppu.CreateRegister(map[string]ppu.Field{
		"sprite_overflow": {Index: 5, Size: 1},
		"sprite_zero_hit": {Index: 6, Size: 1},
		"vertical_blank":  {Index: 7, Size: 1},
	})
}

func CreateMaskRegister() ppu.Register {
	return ppu.CreateRegister(map[string]ppu.Field{
		"grayscale":              {Index: 0, Size: 1},
		"render_background_left": {Index: 1, Size: 1},
		"render_sprites_left":    {Index: 2, Size: 1},
		"render_background":      {Index: 3, Size: 1},
		"render_sprites":         {Index: 4, Size: 1},
		"enhance_red":            {Index: 5, Size: 1},
		"enhance_green":          {Index: 6, Size: 1},
		"enhance_blue":           {Index: 7, Size: 1},
	})
}

func CreateControlRegister() ppu.Register {
	return ppu.CreateRegister(map[string]ppu.Field{
		"nametable_x":        {Index: 0, Size: 1},
		"nametable_y":        {Index: 1, Size: 1},
		"increment_mode":     {Index: 2, Size: 1},
		"pattern_sprite":     {Index: 3, Size: 1},
		"pattern_background": {Index: 4, Size: 1},
		"sprite_size":        {Index: 5, Size: 1},
		"slave_mode":         {Index: 6, Size: 1},
		"enable_nmi":         {Index: 7, Size: 1},
	})
}

func CreateLoopyRegister() ppu.Register {
	return ppu.CreateRegister(map[string]ppu.Field{
		"coarse_x":    {Index: 0, Size: 5},
		"coarse_y":    {Index: 5, Size: 5},
		"nametable_x": {Index: 10, Size: 1},
		"nametable_y": {Index: 11, Size: 1},
		"fine_y":      {Index: 12, Size: 3},
	})
}

type spriteEntry struct {
	y         uint8
	id        uint8
	attribute uint8
	x         uint8
}

// PPU is the per-dot rendering state machine: 341 dots per scanline, 262
// scanlines per frame, scanline -1 being the pre-render line. Step advances
// exactly one dot; the scheduler calls it three times per CPU cycle.
type PPU struct {
	tableName    [2][1024]uint8
	tablePattern [2][4096]uint8
	tablePalette [32]uint8

	status  ppu.Register
	mask    ppu.Register
	control ppu.Register

	vramAddr ppu.Register
	tramAddr ppu.Register
	fineX    uint8

	addressLatch  uint8
	ppuDataBuffer uint8

	oam     [256]uint8
	oamAddr uint8

	scanline int16
	cycle    int16

	oddFrame      bool
	frameComplete bool
	totalDots     uint64
	frameCount    uint64

	bgNextTileId       uint8
	bgNextTileAttrib   uint8
	bgNextTileLsb      uint8
	bgNextTileMsb      uint8
	bgShifterPatternLo uint16
	bgShifterPatternHi uint16
	bgShifterAttribLo  uint16
	bgShifterAttribHi  uint16

	spriteScanline         [8]spriteEntry
	spriteCount            uint8
	spriteShifterPatternLo [8]uint8
	spriteShifterPatternHi [8]uint8

	spriteZeroHitPossible   bool
	spriteZeroBeingRendered bool

	nmi       bool
	cartridge *Cartridge

	frames [2]Frame
	back   int
}

func NewPPU() *PPU {
	return &PPU{
		status:   CreateStatusRegister(),
		mask:     CreateMaskRegister(),
		control:  CreateControlRegister(),
		vramAddr: CreateLoopyRegister(),
		tramAddr: CreateLoopyRegister(),
		scanline: -1,
	}
}

func (p *PPU) connectCartridge(cartridge *Cartridge) {
	p.cartridge = cartridge
}

// Frame returns the most recently completed picture.
func (p *PPU) Frame() *Frame {
	return &p.frames[1-p.back]
}

func (p *PPU) renderingEnabled() bool {
	return p.mask.GetField("render_background") != 0 || p.mask.GetField("render_sprites") != 0
}

// takeNMI consumes the pending NMI signal raised at (241, 1).
func (p *PPU) takeNMI() bool {
	if p.nmi {
		p.nmi = false
		return true
	}
	return false
}

func (p *PPU) takeFrameComplete() bool {
	if p.frameComplete {
		p.frameComplete = false
		return true
	}
	return false
}

func (p *PPU) writeOAMByte(data uint8) {
	p.oam[p.oamAddr] = data
	p.oamAddr++
}

// cpuRead services the $2000-$2007 register window. readOnly peeks skip
// every side effect so debug views cannot disturb emulation.
func (p *PPU) cpuRead(addr uint16, readOnly bool) uint8 {
	if readOnly {
		switch addr {
		case 0x0000:
			return uint8(p.control.Reg)
		case 0x0001:
			return uint8(p.mask.Reg)
		case 0x0002:
			return uint8(p.status.Reg)
		}
		return 0
	}

	data := uint8(0)
	switch addr {
	case 0x0002:
		// Reading status clears vertical blank and the shared write
		// toggle; the low bits are stale bus contents.
		data = (uint8(p.status.Reg) & 0xE0) | (p.ppuDataBuffer & 0x1F)
		p.status.SetField("vertical_blank", 0)
		p.addressLatch = 0
	case 0x0004:
		data = p.oam[p.oamAddr]
	case 0x0007:
		// Reads are buffered by one access, except palette space.
		data = p.ppuDataBuffer
		p.ppuDataBuffer = p.ppuRead(p.vramAddr.Reg)
		if p.vramAddr.Reg >= 0x3F00 {
			data = p.ppuDataBuffer
		}
		p.vramAddr.Reg += p.vramIncrement()
	}
	return data
}

func (p *PPU) cpuWrite(addr uint16, data uint8) {
	switch addr {
	case 0x0000:
		p.control.Reg = uint16(data)
		p.tramAddr.SetField("nametable_x", p.control.GetField("nametable_x"))
		p.tramAddr.SetField("nametable_y", p.control.GetField("nametable_y"))
	case 0x0001:
		p.mask.Reg = uint16(data)
	case 0x0003:
		p.oamAddr = data
	case 0x0004:
		p.writeOAMByte(data)
	case 0x0005:
		if p.addressLatch == 0 {
			p.fineX = data & 0x07
			p.tramAddr.SetField("coarse_x", uint16(data)>>3)
			p.addressLatch = 1
		} else {
			p.tramAddr.SetField("fine_y", uint16(data)&0x07)
			p.tramAddr.SetField("coarse_y", uint16(data)>>3)
			p.addressLatch = 0
		}
	case 0x0006:
		if p.addressLatch == 0 {
			p.tramAddr.Reg = ((uint16(data) & 0x3F) << 8) | (p.tramAddr.Reg & 0x00FF)
			p.addressLatch = 1
		} else {
			p.tramAddr.Reg = (p.tramAddr.Reg & 0xFF00) | uint16(data)
			p.vramAddr.Reg = p.tramAddr.Reg
			p.addressLatch = 0
		}
	case 0x0007:
		p.ppuWrite(p.vramAddr.Reg, data)
		p.vramAddr.Reg += p.vramIncrement()
	}
}

func (p *PPU) vramIncrement() uint16 {
	if p.control.GetField("increment_mode") != 0 {
		return 32
	}
	return 1
}

// nametableIndex resolves a $2000-$3EFF address into a physical nametable
// and offset according to the active mirroring.
func (p *PPU) nametableIndex(addr uint16) (int, uint16) {
	addr &= 0x0FFF
	table := addr >> 10
	offset := addr & 0x03FF

	mirror := mapper.Vertical
	if p.cartridge != nil {
		mirror = p.cartridge.Mirror()
	}
	switch mirror {
	case mapper.Horizontal:
		return int(table >> 1), offset
	case mapper.OneScreenLo:
		return 0, offset
	case mapper.OneScreenHi:
		return 1, offset
	}
	return int(table & 0x01), offset
}

func paletteIndex(addr uint16) uint16 {
	addr &= 0x001F
	// Sprite backdrop entries mirror the background ones, so every slot
	// ending in 0 resolves to the universal background color.
	switch addr {
	case 0x0010, 0x0014, 0x0018, 0x001C:
		addr -= 0x0010
	}
	return addr
}

func (p *PPU) ppuRead(addr uint16) uint8 {
	addr &= 0x3FFF
	if p.cartridge != nil {
		if data, ok := p.cartridge.ppuRead(addr); ok {
			return data
		}
	}

	switch {
	case addr <= 0x1FFF:
		return p.tablePattern[(addr&0x1000)>>12][addr&0x0FFF]
	case addr <= 0x3EFF:
		table, offset := p.nametableIndex(addr)
		return p.tableName[table][offset]
	default:
		mask := uint8(0x3F)
		if p.mask.GetField("grayscale") != 0 {
			mask = 0x30
		}
		return p.tablePalette[paletteIndex(addr)] & mask
	}
}

func (p *PPU) ppuWrite(addr uint16, data uint8) {
	addr &= 0x3FFF
	if p.cartridge != nil && p.cartridge.ppuWrite(addr, data) {
		return
	}

	switch {
	case addr <= 0x1FFF:
		p.tablePattern[(addr&0x1000)>>12][addr&0x0FFF] = data
	case addr <= 0x3EFF:
		table, offset := p.nametableIndex(addr)
		p.tableName[table][offset] = data
	default:
		p.tablePalette[paletteIndex(addr)] = data
	}
}

// colorIndexAt reads the master palette index for a palette/pixel pair.
func (p *PPU) colorIndexAt(palette uint8, pixel uint8) uint8 {
	return p.ppuRead(0x3F00+(uint16(palette)<<2)+uint16(pixel)) & 0x3F
}

func (p *PPU) incrementScrollX() {
	if !p.renderingEnabled() {
		return
	}
	if p.vramAddr.GetField("coarse_x") == 31 {
		p.vramAddr.SetField("coarse_x", 0)
		p.vramAddr.SetField("nametable_x", ^p.vramAddr.GetField("nametable_x"))
		return
	}
	p.vramAddr.SetField("coarse_x", p.vramAddr.GetField("coarse_x")+1)
}

func (p *PPU) incrementScrollY() {
	if !p.renderingEnabled() {
		return
	}
	if p.vramAddr.GetField("fine_y") < 7 {
		p.vramAddr.SetField("fine_y", p.vramAddr.GetField("fine_y")+1)
		return
	}
	p.vramAddr.SetField("fine_y", 0)

	switch p.vramAddr.GetField("coarse_y") {
	case 29:
		p.vramAddr.SetField("coarse_y", 0)
		p.vramAddr.SetField("nametable_y", ^p.vramAddr.GetField("nametable_y"))
	case 31:
		// Pointer was in attribute memory, wrap inside the nametable.
		p.vramAddr.SetField("coarse_y", 0)
	default:
		p.vramAddr.SetField("coarse_y", p.vramAddr.GetField("coarse_y")+1)
	}
}

func (p *PPU) transferAddressX() {
	if !p.renderingEnabled() {
		return
	}
	p.vramAddr.SetField("nametable_x", p.tramAddr.GetField("nametable_x"))
	p.vramAddr.SetField("coarse_x", p.tramAddr.GetField("coarse_x"))
}

func (p *PPU) transferAddressY() {
	if !p.renderingEnabled() {
		return
	}
	p.vramAddr.SetField("fine_y", p.tramAddr.GetField("fine_y"))
	p.vramAddr.SetField("nametable_y", p.tramAddr.GetField("nametable_y"))
	p.vramAddr.SetField("coarse_y", p.tramAddr.GetField("coarse_y"))
}

func (p *PPU) loadBackgroundShifters() {
	p.bgShifterPatternLo = (p.bgShifterPatternLo & 0xFF00) | uint16(p.bgNextTileLsb)
	p.bgShifterPatternHi = (p.bgShifterPatternHi & 0xFF00) | uint16(p.bgNextTileMsb)

	attrib := uint16(0x0000)
	if p.bgNextTileAttrib&0b01 != 0 {
		attrib = 0x00FF
	}
	p.bgShifterAttribLo = (p.bgShifterAttribLo & 0xFF00) | attrib
	attrib = 0x0000
	if p.bgNextTileAttrib&0b10 != 0 {
		attrib = 0x00FF
	}
	p.bgShifterAttribHi = (p.bgShifterAttribHi & 0xFF00) | attrib
}

func (p *PPU) updateShifters() {
	if p.mask.GetField("render_background") != 0 {
		p.bgShifterPatternLo <<= 1
		p.bgShifterPatternHi <<= 1
		p.bgShifterAttribLo <<= 1
		p.bgShifterAttribHi <<= 1
	}

	if p.mask.GetField("render_sprites") != 0 && p.cycle >= 1 && p.cycle < 258 {
		for i := uint8(0); i < p.spriteCount; i++ {
			if p.spriteScanline[i].x > 0 {
				p.spriteScanline[i].x--
			} else {
				p.spriteShifterPatternLo[i] <<= 1
				p.spriteShifterPatternHi[i] <<= 1
			}
		}
	}
}

// evaluateSprites runs the cycle-257 scan over OAM, picking at most eight
// sprites for the next scanline. Lower OAM indices win overlap priority by
// simply filling the slots first.
func (p *PPU) evaluateSprites() {
	for i := range p.spriteScanline {
		p.spriteScanline[i] = spriteEntry{y: 0xFF, id: 0xFF, attribute: 0xFF, x: 0xFF}
	}
	for i := range p.spriteShifterPatternLo {
		p.spriteShifterPatternLo[i] = 0
		p.spriteShifterPatternHi[i] = 0
	}
	p.spriteCount = 0
	p.spriteZeroHitPossible = false

	spriteSize := int16(8)
	if p.control.GetField("sprite_size") != 0 {
		spriteSize = 16
	}

	for entry := 0; entry < 64; entry++ {
		diff := p.scanline - int16(p.oam[entry*4])
		if diff < 0 || diff >= spriteSize {
			continue
		}
		if p.spriteCount == 8 {
			p.status.SetField("sprite_overflow", 1)
			break
		}
		if entry == 0 {
			p.spriteZeroHitPossible = true
		}
		p.spriteScanline[p.spriteCount] = spriteEntry{
			y:         p.oam[entry*4],
			id:        p.oam[entry*4+1],
			attribute: p.oam[entry*4+2],
			x:         p.oam[entry*4+3],
		}
		p.spriteCount++
	}
}

func flipByte(b uint8) uint8 {
	b = ((b & 0xF0) >> 4) | ((b & 0x0F) << 4)
	b = ((b & 0xCC) >> 2) | ((b & 0x33) << 2)
	b = ((b & 0xAA) >> 1) | ((b & 0x55) << 1)
	return b
}

// fetchSpritePatterns loads the shift registers for the sprites selected by
// evaluateSprites, honoring 8x8/8x16 mode and both flips.
func (p *PPU) fetchSpritePatterns() {
	for i := uint8(0); i < p.spriteCount; i++ {
		sprite := p.spriteScanline[i]
		row := uint16(p.scanline) - uint16(sprite.y)
		flippedV := sprite.attribute&0x80 != 0

		var addrLo uint16
		if p.control.GetField("sprite_size") == 0 {
			if flippedV {
				row = 7 - row
			}
			addrLo = (p.control.GetField("pattern_sprite") << 12) |
				(uint16(sprite.id) << 4) | row
		} else {
			if flippedV {
				row = 15 - row
			}
			tile := uint16(sprite.id & 0xFE)
			if row >= 8 {
				tile++
				row &= 0x07
			}
			addrLo = (uint16(sprite.id&0x01) << 12) | (tile << 4) | row
		}

		bitsLo := p.ppuRead(addrLo)
		bitsHi := p.ppuRead(addrLo + 8)
		if sprite.attribute&0x40 != 0 {
			bitsLo = flipByte(bitsLo)
			bitsHi = flipByte(bitsHi)
		}
		p.spriteShifterPatternLo[i] = bitsLo
		p.spriteShifterPatternHi[i] = bitsHi
	}
}

// Step advances the PPU by exactly one dot.
func (p *PPU) Step() {
	p.totalDots++

	if p.scanline >= -1 && p.scanline < 240 {
		if p.scanline == -1 && p.cycle == 1 {
			p.status.SetField("vertical_blank", 0)
			p.status.SetField("sprite_zero_hit", 0)
			p.status.SetField("sprite_overflow", 0)
			for i := range p.spriteShifterPatternLo {
				p.spriteShifterPatternLo[i] = 0
				p.spriteShifterPatternHi[i] = 0
			}
		}

		if (p.cycle >= 2 && p.cycle < 258) || (p.cycle >= 321 && p.cycle < 338) {
			p.updateShifters()
			switch (p.cycle - 1) % 8 {
			case 0:
				p.loadBackgroundShifters()
				p.bgNextTileId = p.ppuRead(0x2000 | (p.vramAddr.Reg & 0x0FFF))
			case 2:
				p.bgNextTileAttrib = p.ppuRead(0x23C0 |
					(p.vramAddr.GetField("nametable_y") << 11) |
					(p.vramAddr.GetField("nametable_x") << 10) |
					((p.vramAddr.GetField("coarse_y") >> 2) << 3) |
					(p.vramAddr.GetField("coarse_x") >> 2))
				if p.vramAddr.GetField("coarse_y")&0x02 != 0 {
					p.bgNextTileAttrib >>= 4
				}
				if p.vramAddr.GetField("coarse_x")&0x02 != 0 {
					p.bgNextTileAttrib >>= 2
				}
				p.bgNextTileAttrib &= 0x03
			case 4:
				p.bgNextTileLsb = p.ppuRead((p.control.GetField("pattern_background") << 12) +
					(uint16(p.bgNextTileId) << 4) + p.vramAddr.GetField("fine_y"))
			case 6:
				p.bgNextTileMsb = p.ppuRead((p.control.GetField("pattern_background") << 12) +
					(uint16(p.bgNextTileId) << 4) + p.vramAddr.GetField("fine_y") + 8)
			case 7:
				p.incrementScrollX()
			}
		}
		if p.cycle == 256 {
			p.incrementScrollY()
		}
		if p.cycle == 257 {
			p.loadBackgroundShifters()
			p.transferAddressX()
			if p.scanline >= 0 {
				p.evaluateSprites()
			}
		}
		if p.cycle == 338 || p.cycle == 340 {
			p.bgNextTileId = p.ppuRead(0x2000 | (p.vramAddr.Reg & 0x0FFF))
		}
		if p.scanline == -1 && p.cycle >= 280 && p.cycle < 305 {
			p.transferAddressY()
		}
		if p.cycle == 340 {
			p.fetchSpritePatterns()
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.status.SetField("vertical_blank", 1)
		if p.control.GetField("enable_nmi") != 0 {
			p.nmi = true
		}
	}

	p.renderDot()
	p.advanceDot()
}

// renderDot composites the background and sprite pixels for the current dot
// and writes one palette index into the back buffer.
func (p *PPU) renderDot() {
	bgPixel := uint8(0)
	bgPalette := uint8(0)
	if p.mask.GetField("render_background") != 0 {
		bitMux := uint16(0x8000) >> p.fineX

		p0 := uint8(0)
		if p.bgShifterPatternLo&bitMux != 0 {
			p0 = 1
		}
		p1 := uint8(0)
		if p.bgShifterPatternHi&bitMux != 0 {
			p1 = 1
		}
		bgPixel = (p1 << 1) | p0

		pal0 := uint8(0)
		if p.bgShifterAttribLo&bitMux != 0 {
			pal0 = 1
		}
		pal1 := uint8(0)
		if p.bgShifterAttribHi&bitMux != 0 {
			pal1 = 1
		}
		bgPalette = (pal1 << 1) | pal0
	}

	fgPixel := uint8(0)
	fgPalette := uint8(0)
	fgPriority := false
	if p.mask.GetField("render_sprites") != 0 {
		p.spriteZeroBeingRendered = false
		for i := uint8(0); i < p.spriteCount; i++ {
			if p.spriteScanline[i].x != 0 {
				continue
			}

			lo := uint8(0)
			if p.spriteShifterPatternLo[i]&0x80 != 0 {
				lo = 1
			}
			hi := uint8(0)
			if p.spriteShifterPatternHi[i]&0x80 != 0 {
				hi = 1
			}
			fgPixel = (hi << 1) | lo
			fgPalette = (p.spriteScanline[i].attribute & 0x03) + 0x04
			fgPriority = p.spriteScanline[i].attribute&0x20 == 0

			if fgPixel != 0 {
				if i == 0 {
					p.spriteZeroBeingRendered = true
				}
				break
			}
		}
	}

	pixel := uint8(0)
	palette := uint8(0)
	switch {
	case bgPixel == 0 && fgPixel > 0:
		pixel, palette = fgPixel, fgPalette
	case bgPixel > 0 && fgPixel == 0:
		pixel, palette = bgPixel, bgPalette
	case bgPixel > 0 && fgPixel > 0:
		if fgPriority {
			pixel, palette = fgPixel, fgPalette
		} else {
			pixel, palette = bgPixel, bgPalette
		}
		p.checkSpriteZeroHit()
	}

	x := int(p.cycle) - 1
	y := int(p.scanline)
	if x >= 0 && x < FrameWidth && y >= 0 && y < FrameHeight {
		p.frames[p.back].Pixels[y][x] = p.colorIndexAt(palette, pixel)
	}
}

func (p *PPU) checkSpriteZeroHit() {
	if !p.spriteZeroHitPossible || !p.spriteZeroBeingRendered {
		return
	}
	if p.mask.GetField("render_background") == 0 || p.mask.GetField("render_sprites") == 0 {
		return
	}
	// The left-column masks exclude the first eight dots from the hit.
	if p.mask.GetField("render_background_left") == 0 || p.mask.GetField("render_sprites_left") == 0 {
		if p.cycle >= 9 && p.cycle < 258 {
			p.status.SetField("sprite_zero_hit", 1)
		}
	} else if p.cycle >= 1 && p.cycle < 258 {
		p.status.SetField("sprite_zero_hit", 1)
	}
}

func (p *PPU) advanceDot() {
	p.cycle++

	// With rendering enabled the pre-render line loses its last dot on
	// odd frames.
	skip := p.scanline == -1 && p.cycle == 340 && p.oddFrame && p.renderingEnabled()
	if p.cycle >= 341 || skip {
		p.cycle = 0
		p.scanline++
		if p.scanline >= 261 {
			p.scanline = -1
			p.frameComplete = true
			p.oddFrame = !p.oddFrame
			p.frameCount++
			p.back = 1 - p.back
		}
	}
}

func (p *PPU) reset() {
	p.fineX = 0
	p.addressLatch = 0
	p.ppuDataBuffer = 0
	p.scanline = -1
	p.cycle = 0
	p.oddFrame = false
	p.frameComplete = false
	p.totalDots = 0
	p.frameCount = 0
	p.bgNextTileId = 0
	p.bgNextTileAttrib = 0
	p.bgNextTileLsb = 0
	p.bgNextTileMsb = 0
	p.bgShifterPatternLo = 0
	p.bgShifterPatternHi = 0
	p.bgShifterAttribLo = 0
	p.bgShifterAttribHi = 0
	p.status.Reg = 0
	p.mask.Reg = 0
	p.control.Reg = 0
	p.vramAddr.Reg = 0
	p.tramAddr.Reg = 0
	p.oamAddr = 0
	p.nmi = false
	p.spriteCount = 0
}

// Dots reports the total number of dots stepped since reset.
func (p *PPU) Dots() uint64 {
	return p.totalDots
}

// Position reports the current (scanline, dot) coordinate.
func (p *PPU) Position() (int, int) {
	return int(p.scanline), int(p.cycle)
}

// VerticalBlank reports the status register's vertical blank flag.
func (p *PPU) VerticalBlank() bool {
	return p.status.GetField("vertical_blank") != 0
}
