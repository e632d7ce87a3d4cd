package models

// Product represents the 'cf_produto' table.
type Product struct {
	ID              int64  `gorm:"column:prod_id;primaryKey;autoIncrement"`
	Code            int64  `gorm:"column:prod_cod;index"`
	Name            string `gorm:"column:prod_nome;size:200"`
	Description     string `gorm:"column:prod_desc;size:200"`
	SKU             string `gorm:"column:prod_sku;size:500"`      // comma-joined GTINs
	Proportion      string `gorm:"column:prod_proporcao;size:50"` // packaging unit
	Section         string `gorm:"column:prod_sessao;size:100"`
	Group           string `gorm:"column:prod_grupo;size:100"`
	Subgroup        string `gorm:"column:prod_subgrupo;size:100"`
	CompanyID       int    `gorm:"column:prod_empresa"`
	EstablishmentID int    `gorm:"column:prod_estabelecimento"`
}

// TableName overrides the table name.
func (Product) TableName() string {
	return "cf_produto"
}

// Price represents the 'cf_valor' table.
type Price struct {
	ID             int64  `gorm:"column:vlr_id;primaryKey;autoIncrement"`
	ProductID      int64  `gorm:"column:vlr_produto;index"`
	CommercialType int    `gorm:"column:vlr_idcomercial"`
	BranchID       int    `gorm:"column:vlr_filial"`
	ValidFrom      string `gorm:"column:vlr_data_de;size:10"`  // YYYY-MM-DD
	ValidTo        string `gorm:"column:vlr_data_ate;size:10"` // YYYY-MM-DD
	Values         string `gorm:"column:vlr_valores;size:255"`
	Time           string `gorm:"column:vlr_hora;size:5"`
	CompanyID      int    `gorm:"column:vlr_empresa"`
	UserID         int    `gorm:"column:vlr_usuario"`
}

// TableName overrides the table name.
func (Price) TableName() string {
	return "cf_valor"
}

// DailyPrint represents the 'cf_dailyprint' table: the daily queue of
// promotion posters to print.
type DailyPrint struct {
	ID              int64  `gorm:"column:dp_id;primaryKey;autoIncrement"`
	ProductID       int64  `gorm:"column:dp_produto"`
	PriceID         *int64 `gorm:"column:dp_valor"`
	PosterID        int    `gorm:"column:dp_dgcartaz"`
	ReasonID        int    `gorm:"column:dp_dgmotivo"`
	CompanyID       int    `gorm:"column:dp_empresa"`
	EstablishmentID int    `gorm:"column:dp_estabelecimento"`
	UserID          int    `gorm:"column:dp_usuario"`
	Date            string `gorm:"column:dp_data;size:10"`
	Time            string `gorm:"column:dp_hora;size:8"`
	Size            string `gorm:"column:dp_tamanho;size:50"`
	Format          string `gorm:"column:dp_fortam;size:100"`
	Name            string `gorm:"column:dp_nome;size:200"`
	Mobile          string `gorm:"column:dp_mobile;size:1"`
	Installments    string `gorm:"column:dp_qntparcela;size:10"`
	RateID          string `gorm:"column:dp_idtaxa;size:10"`
	Audit           int    `gorm:"column:dp_auditoria"`
}

// TableName overrides the table name.
func (DailyPrint) TableName() string {
	return "cf_dailyprint"
}

// Columns lists, per table, the columns the catalog writer touches.
var Columns = map[string][]string{
	Product{}.TableName(): {
		"prod_id", "prod_cod", "prod_nome", "prod_desc", "prod_sku", "prod_proporcao",
		"prod_sessao", "prod_grupo", "prod_subgrupo", "prod_empresa", "prod_estabelecimento",
	},
	Price{}.TableName(): {
		"vlr_id", "vlr_produto", "vlr_idcomercial", "vlr_filial", "vlr_data_de",
		"vlr_data_ate", "vlr_valores", "vlr_hora", "vlr_empresa", "vlr_usuario",
	},
	DailyPrint{}.TableName(): {
		"dp_id", "dp_produto", "dp_valor", "dp_dgcartaz", "dp_dgmotivo", "dp_empresa",
		"dp_estabelecimento", "dp_usuario", "dp_data", "dp_hora", "dp_tamanho",
		"dp_fortam", "dp_nome", "dp_mobile", "dp_qntparcela", "dp_idtaxa", "dp_auditoria",
	},
}
