package famicore

import "image/color"

// Palette is the 64-entry 2C02 master palette, built once and shared by
// reference with any front end that wants resolved colors.
var Palette = [64]color.RGBA{
	{0x54, 0x54, 0x54, 0xFF}, {0x00, 0x1E, 0x74, 0xFF}, {0x08, 0x10, 0x90, 0xFF}, {0x30, 0x00, 0x88, 0xFF},
	{0x44, 0x00, 0x64, 0xFF}, {0x5C, 0x00, 0x30, 0xFF}, {0x54, 0x04, 0x00, 0xFF}, {0x3C, 0x18, 0x00, 0xFF},
	{0x20, 0x2A, 0x00, 0xFF}, {0x08, 0x3A, 0x00, 0xFF}, {0x00, 0x40, 0x00, 0xFF}, {0x00, 0x3C, 0x00, 0xFF},
	{0x00, 0x32, 0x3C, 0xFF}, {0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
	{0x98, 0x96, 0x98, 0xFF}, {0x08, 0x4C, 0xC4, 0xFF}, {0x30, 0x32, 0xEC, 0xFF}, {0x5C, 0x1E, 0xE4, 0xFF},
	{0x88, 0x14, 0xB0, 0xFF}, {0xA0, 0x14, 0x64, 0xFF}, {0x98, 0x22, 0x20, 0xFF}, {0x78, 0x3C, 0x00, 0xFF},
	{0x54, 0x5A, 0x00, 0xFF}, {0x28, 0x72, 0x00, 0xFF}, {0x08, 0x7C, 0x00, 0xFF}, {0x00, 0x76, 0x28, 0xFF},
	{0x00, 0x66, 0x78, 0xFF}, {0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
	{0xEC, 0xEE, 0xEC, 0xFF}, {0x4C, 0x9A, 0xEC, 0xFF}, {0x78, 0x7C, 0xEC, 0xFF}, {0xB0, 0x62, 0xEC, 0xFF},
	{0xE4, 0x54, 0xEC, 0xFF}, {0xEC, 0x58, 0xB4, 0xFF}, {0xEC, 0x6A, 0x64, 0xFF}, {0xD4, 0x88, 0x20, 0xFF},
	{0xA0, 0xAA, 0x00, 0xFF}, {0x74, 0xC4, 0x00, 0xFF}, {0x4C, 0xD0, 0x20, 0xFF}, {0x38, 0xCC, 0x6C, 0xFF},
	{0x38, 0xB4, 0xCC, 0xFF}, {0x3C, 0x3C, 0x3C, 0xFF}, {0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
	{0xEC, 0xEE, 0xEC, 0xFF}, {0xA8, 0xCC, 0xEC, 0xFF}, {0xBC, 0xBC, 0xEC, 0xFF}, {0xD4, 0xB2, 0xEC, 0xFF},
	{0xEC, 0xAE, 0xEC, 0xFF}, {0xEC, 0xAE, 0xD4, 0xFF}, {0xEC, 0xB4, 0xB0, 0xFF}, {0xE4, 0xC4, 0x90, 0xFF},
	{0xCC, 0xD2, 0x78, 0xFF}, {0xB4, 0xDE, 0x78, 0xFF}, {0xA8, 0xE2, 0x90, 0xFF}, {0x98, 0xE2, 0xB4, 0xFF},
	{0xA0, 0xD6, 0xE4, 0xFF}, {0xA0, 0xA2, 0xA0, 0xFF}, {0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0x00, 0xFF},
}
