package wechat

// 公众号后台文章列表接口cgi-bin/appmsg?action=list_ex的返回结构

type BaseResp struct {
	Ret    int    `json:"ret"`
	ErrMsg string `json:"err_msg"`
}

type AppMsg struct {
	Aid        string `json:"aid"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Digest     string `json:"digest"`
	CreateTime int64  `json:"create_time"`
	UpdateTime int64  `json:"update_time"`
}

type AppMsgResponse struct {
	BaseResp   BaseResp `json:"base_resp"`
	AppMsgCnt  int      `json:"app_msg_cnt"`
	AppMsgList []AppMsg `json:"app_msg_list"`
}
