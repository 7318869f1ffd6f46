package article

// 抓取流程中流转的数据：列表程序产出文章引用，提取程序产出带价格表的文章记录

// 文章引用，由列表程序产出、提取程序消费，不做去重
type Ref struct {
	Title      string
	Link       string
	CreateTime int64  // 接口列表中的发布时间戳，搜索结果中为0
	Account    string // 搜索结果中的公众号名称
	Page       int    // 搜索结果所在页码
}

// 价格表中的一行，全部保留原始文本
type PriceRow struct {
	Variety            string `json:"品种"`
	Spec               string `json:"规格"`
	Price              string `json:"价格"`
	CompareToYesterday string `json:"对比昨天"`
}

// 一篇文章的价格记录，只有表头校验通过的文章才会生成
type Record struct {
	Date      string     `json:"日期"`
	Title     string     `json:"标题"`
	Link      string     `json:"链接"`
	PriceRows []PriceRow `json:"价格数据"`
}
