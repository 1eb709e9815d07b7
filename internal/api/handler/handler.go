package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/pulsechat/internal/service"
)

// Handler 聚合各业务 service，gin 路由的统一入口
type Handler struct {
	authSvc       service.AuthService
	engagementSvc service.EngagementService
	postSvc       service.PostService
	timelineSvc   service.TimelineService
	profileSvc    service.ProfileService
}

// bindError 把 validator 的字段错误压成一条可读消息
func bindError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed on rule %q", fe.Field(), fe.Tag())
	}
	return err.Error()
}

func New(authSvc service.AuthService, engagementSvc service.EngagementService, postSvc service.PostService, timelineSvc service.TimelineService, profileSvc service.ProfileService) *Handler {
	return &Handler{
		authSvc:       authSvc,
		engagementSvc: engagementSvc,
		postSvc:       postSvc,
		timelineSvc:   timelineSvc,
		profileSvc:    profileSvc,
	}
}
