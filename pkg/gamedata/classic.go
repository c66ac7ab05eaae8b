package gamedata

func init() {
	Register(DefaultVersion, func() BlockRegistry { return NewBlockRegistry(classicBlocks()) })
}

func hardness(v float64) *float64 { return &v }

// classicBlocks is the block table used by the terrain generators.
func classicBlocks() []Block {
	return []Block{
		{ID: 0, Name: "air", DisplayName: "Air", Hardness: hardness(0), Transparent: true},
		{ID: 1, Name: "stone", DisplayName: "Stone", Hardness: hardness(1.5), Solid: true, Resistance: 6, Tool: "pickaxe",
			Drops: []Drop{{ID: 4, MinCount: 1, MaxCount: 1}}},
		{ID: 2, Name: "grass", DisplayName: "Grass Block", Hardness: hardness(0.6), Solid: true, Resistance: 0.6, Tool: "shovel",
			Drops: []Drop{{ID: 3, MinCount: 1, MaxCount: 1}}},
		{ID: 3, Name: "dirt", DisplayName: "Dirt", Hardness: hardness(0.5), Solid: true, Resistance: 0.5, Tool: "shovel",
			Drops: []Drop{{ID: 3, MinCount: 1, MaxCount: 1}}},
		{ID: 4, Name: "cobblestone", DisplayName: "Cobblestone", Hardness: hardness(2), Solid: true, Resistance: 6, Tool: "pickaxe",
			Drops: []Drop{{ID: 4, MinCount: 1, MaxCount: 1}}},
		{ID: 5, Name: "planks", DisplayName: "Wooden Planks", Hardness: hardness(2), Solid: true, Flammable: true, Resistance: 3, Tool: "axe",
			Drops: []Drop{{ID: 5, MinCount: 1, MaxCount: 1}}},
		{ID: 7, Name: "bedrock", DisplayName: "Bedrock", Solid: true, Resistance: 3600000},
		{ID: 9, Name: "water", DisplayName: "Water", Hardness: hardness(100), Transparent: true, Fluid: true, Resistance: 100},
		{ID: 11, Name: "lava", DisplayName: "Lava", Hardness: hardness(100), Transparent: true, Fluid: true, EmitLight: 15, Resistance: 100},
		{ID: 12, Name: "sand", DisplayName: "Sand", Hardness: hardness(0.5), Solid: true, Gravity: true, Resistance: 0.5, Tool: "shovel",
			Drops: []Drop{{ID: 12, MinCount: 1, MaxCount: 1}}},
		{ID: 13, Name: "gravel", DisplayName: "Gravel", Hardness: hardness(0.6), Solid: true, Gravity: true, Resistance: 0.6, Tool: "shovel",
			Drops: []Drop{{ID: 13, MinCount: 1, MaxCount: 1}}},
		{ID: 14, Name: "gold_ore", DisplayName: "Gold Ore", Hardness: hardness(3), Solid: true, Resistance: 3, Tool: "pickaxe",
			Drops: []Drop{{ID: 14, MinCount: 1, MaxCount: 1}}},
		{ID: 15, Name: "iron_ore", DisplayName: "Iron Ore", Hardness: hardness(3), Solid: true, Resistance: 3, Tool: "pickaxe",
			Drops: []Drop{{ID: 15, MinCount: 1, MaxCount: 1}}},
		{ID: 16, Name: "coal_ore", DisplayName: "Coal Ore", Hardness: hardness(3), Solid: true, Resistance: 3, Tool: "pickaxe",
			Drops: []Drop{{ID: 263, MinCount: 1, MaxCount: 1}}},
		{ID: 17, Name: "log", DisplayName: "Wood", Hardness: hardness(2), Solid: true, Flammable: true, Resistance: 2, Tool: "axe",
			Drops: []Drop{{ID: 17, MinCount: 1, MaxCount: 1}}},
		{ID: 18, Name: "leaves", DisplayName: "Leaves", Hardness: hardness(0.2), Solid: true, Transparent: true, Flammable: true, Resistance: 0.2,
			Drops: []Drop{{ID: 6, MinCount: 0, MaxCount: 1}}},
		{ID: 56, Name: "diamond_ore", DisplayName: "Diamond Ore", Hardness: hardness(3), Solid: true, Resistance: 3, Tool: "pickaxe",
			Drops: []Drop{{ID: 264, MinCount: 1, MaxCount: 1}}},
		{ID: 73, Name: "redstone_ore", DisplayName: "Redstone Ore", Hardness: hardness(3), Solid: true, Resistance: 3, Tool: "pickaxe",
			Drops: []Drop{{ID: 331, MinCount: 4, MaxCount: 5}}},
	}
}
