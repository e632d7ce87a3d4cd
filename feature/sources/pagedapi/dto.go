package pagedapi

type page[T any] struct {
	Items   []T  `json:"items"`
	HasNext bool `json:"hasNext"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type productDTO struct {
	ID          int64  `json:"idProduto"`
	FullName    string `json:"descricaoCompleta"`
	GenericName string `json:"descricaoGenerica"`
}

type priceDTO struct {
	ProductID int64   `json:"IdProduto"`
	Price     float64 `json:"PrecoVenda"`
	Branch    int     `json:"NumeroEmpresa"`
}

type packagingGroupDTO struct {
	Packagings []packagingDTO `json:"Embalagens"`
}

type packagingDTO struct {
	Status string `json:"Status"`
	Unit   string `json:"Embalagem"`
	GTIN   string `json:"CodigoAcesso"`
}

type categoryDTO struct {
	Description string `json:"DescricaoCategoria"`
	Level       int    `json:"NivelHierarquia"`
}

type branchDTO struct {
	ID int `json:"nroEmpresa"`
}

type promotionDTO struct {
	Description string             `json:"descricao"`
	Start       string             `json:"dataInicio"`
	End         string             `json:"dataFim"`
	Items       []promotionItemDTO `json:"itens"`
}

type promotionItemDTO struct {
	ProductID    int64   `json:"seqProduto"`
	Quantity     int     `json:"quantidade"`
	Price        float64 `json:"precoItem"`
	RegularPrice float64 `json:"precoNormal"`
	Product      struct {
		FullName string `json:"descricaoCompleta"`
	} `json:"produto"`
}

// branchPromotion is the raw record of the promotions job: a promotion as
// read for one branch.
type branchPromotion struct {
	Branch    int
	Promotion promotionDTO
}
