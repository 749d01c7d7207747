package catalog

import "github.com/shopspring/decimal"

// SeedCategories is the configured category list, "all" first.
func SeedCategories() []Category {
	return []Category{
		{ID: AllID, Label: "Todas", Image: "./assets/categories/todas.png"},
		{ID: "Cabos", Label: "Cabos", Image: "./assets/categories/cabos.png"},
		{ID: "Carregadores", Label: "Carregadores", Image: "./assets/categories/carregadores.png"},
		{ID: "Proteção", Label: "Proteção", Image: "./assets/categories/protecao.png"},
		{ID: "Perfumes", Label: "Perfumes", Image: "./assets/categories/perfumes.png"},
		{ID: "Cuidados", Label: "Cuidados", Image: "./assets/categories/cuidados.png"},
		{ID: "Cadernos", Label: "Cadernos", Image: "./assets/categories/cadernos.png"},
		{ID: "Canetas", Label: "Canetas", Image: "./assets/categories/canetas.png"},
	}
}

func SeedStores() []Store {
	return []Store{
		{
			ID:          "loja-01",
			Name:        "Turbo Acessórios",
			Niche:       "Acessórios de celular",
			Coverage:    []string{"Centro", "Vila Nova", "Jardins"},
			DeliveryFee: decimal.RequireFromString("7.90"),
			ETAMin:      60,
			ETAMax:      90,
			Rating:      4.8,
			WhatsApp:    "5541997277806",
			Image:       strPtr("./assets/stores/turbo-acessorios.png"),
		},
		{
			ID:          "loja-02",
			Name:        "Essência Perfumaria",
			Niche:       "Perfumaria",
			Coverage:    []string{"Centro", "Jardins"},
			DeliveryFee: decimal.RequireFromString("9.90"),
			ETAMin:      60,
			ETAMax:      90,
			Rating:      4.7,
			WhatsApp:    "5541997277806",
			Image:       strPtr("./assets/stores/essencia-perfumaria.png"),
		},
		{
			ID:          "loja-03",
			Name:        "Papel & Cia",
			Niche:       "Papelaria",
			Coverage:    []string{"Centro", "Vila Nova"},
			DeliveryFee: decimal.RequireFromString("6.90"),
			ETAMin:      60,
			ETAMax:      90,
			Rating:      4.6,
			WhatsApp:    "5541997277806",
			Image:       strPtr("./assets/stores/papel-e-cia.png"),
		},
	}
}

func SeedProducts() []Product {
	product := func(id, storeID, name, category, price, badge, image string) Product {
		p := Product{
			ID:        id,
			StoreID:   storeID,
			Name:      name,
			Category:  category,
			Price:     decimal.RequireFromString(price),
			Available: true,
			Image:     strPtr(image),
		}
		if badge != "" {
			p.Badge = strPtr(badge)
		}
		return p
	}
	return []Product{
		product("p-001", "loja-01", "Cabo USB-C Reforçado", "Cabos", "24.90", "Campeão", "./assets/products/cabo-usbc.jpg"),
		product("p-002", "loja-01", "Carregador Turbo 20W", "Carregadores", "59.90", "Entrega rápida", "./assets/products/carregador-20w.jpg"),
		product("p-003", "loja-01", "Película 3D Premium", "Proteção", "29.90", "", "./assets/products/pelicula-3d.jpg"),
		product("p-101", "loja-02", "Perfume Amadeirado 50ml", "Perfumes", "119.90", "Top", "./assets/products/perfume-amadeirado.jpg"),
		product("p-102", "loja-02", "Hidratante 200ml", "Cuidados", "39.90", "", "./assets/products/hidratante-200.png"),
		product("p-103", "loja-02", "Desodorante Aerosol", "Cuidados", "19.90", "", "./assets/products/desodorante.png"),
		product("p-201", "loja-03", "Caderno Universitário 10 matérias", "Cadernos", "34.90", "Mais vendido", "./assets/products/caderno-10m.png"),
		product("p-202", "loja-03", "Caneta Gel 0.7 (kit c/ 3)", "Canetas", "17.90", "", "./assets/products/caneta-gel.png"),
		product("p-203", "loja-03", "Marcador Texto (kit c/ 4)", "Canetas", "21.90", "", "./assets/products/marca-texto.png"),
	}
}

// Seed builds the catalog shipped with the application.
func Seed() *Catalog {
	return New(SeedStores(), SeedProducts(), SeedCategories())
}
